package report

import (
	"fmt"
	"io"
	"os"

	"github.com/geoinnova/projectreport/internal/model"
)

// FileOptions configures WriteFiles.
type FileOptions struct {
	CSV CSVOptions

	// HTMLTitle overrides the HTML page title.
	HTMLTitle string

	// PrettyJSON indents the JSON output.
	PrettyJSON bool

	// HTMLRawHeaders keeps the CSV column names in the HTML tables.
	HTMLRawHeaders bool
}

// WriteFiles writes the report in every requested format into the layout
// directories, which must already exist. All formats are written through
// one MultiWriter, which stops at the first failing format. It returns the
// paths of the outputs in format order, including the files of the failing
// format.
func WriteFiles(l Layout, report *model.Report, formats []Format, opts FileOptions) (paths []string, err error) {
	writers := make([]Writer, 0, len(formats))
	var csvWriter *CSVWriter
	var files []*os.File
	defer func() {
		for _, f := range files {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close %s: %w", f.Name(), cerr)
			}
		}
	}()

	for _, f := range formats {
		if f == FormatCSV {
			csvWriter = NewCSVWriter(l.CSVDir, opts.CSV)
			writers = append(writers, csvWriter)
			continue
		}
		path := l.Path(f)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // path is built from the report layout
		if err != nil {
			return outputPaths(l, formats, csvWriter, files), fmt.Errorf("create %s: %w", path, err)
		}
		files = append(files, file)
		writers = append(writers, newDocumentWriter(f, file, opts))
	}

	if _, err := NewMultiWriter(writers...).Write(report); err != nil {
		return outputPaths(l, formats, csvWriter, files), fmt.Errorf("write report %s: %w", l.ReportDir, err)
	}
	return outputPaths(l, formats, csvWriter, files), nil
}

// outputPaths lists the CSV files written so far and the opened document
// files, in format order.
func outputPaths(l Layout, formats []Format, csvWriter *CSVWriter, files []*os.File) []string {
	opened := make(map[string]bool, len(files))
	for _, f := range files {
		opened[f.Name()] = true
	}
	var paths []string
	for _, f := range formats {
		switch {
		case f == FormatCSV && csvWriter != nil:
			paths = append(paths, csvWriter.Files()...)
		case f != FormatCSV && opened[l.Path(f)]:
			paths = append(paths, l.Path(f))
		}
	}
	return paths
}

// newDocumentWriter returns the writer for a single-file format.
func newDocumentWriter(f Format, out io.Writer, opts FileOptions) Writer {
	switch f {
	case FormatMarkdown:
		return NewMarkdownWriter(out)
	case FormatJSON:
		var jsonOpts []JSONWriterOption
		if opts.PrettyJSON {
			jsonOpts = append(jsonOpts, WithPrettyPrint())
		}
		return NewJSONWriter(out, jsonOpts...)
	default:
		htmlOpts := []HTMLWriterOption{WithRawHeaders(opts.HTMLRawHeaders)}
		if opts.HTMLTitle != "" {
			htmlOpts = append(htmlOpts, WithTitle(opts.HTMLTitle))
		}
		return NewHTMLWriter(out, htmlOpts...)
	}
}
