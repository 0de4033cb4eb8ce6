package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/geoinnova/projectreport/internal/model"
)

// DefaultDelimiter separates CSV fields. Semicolons keep the files usable
// in spreadsheet locales that use a decimal comma.
const DefaultDelimiter = ';'

// CSVOptions configures CSV output.
type CSVOptions struct {
	// Delimiter separates fields. Zero means DefaultDelimiter.
	Delimiter rune

	// Encoding is a WHATWG encoding label ("utf-8", "windows-1252",
	// "iso-8859-15"…). Empty means UTF-8. Characters the target encoding
	// cannot represent are replaced.
	Encoding string
}

// WriteTableCSV writes one table as delimited text: a header row with the
// column names followed by the data rows, each terminated by \r\n. Fields
// are quoted only when they contain the delimiter, a quote or a line break.
func WriteTableCSV(w io.Writer, table *model.Table, opts CSVOptions) error {
	enc, err := resolveEncoding(opts.Encoding)
	if err != nil {
		return err
	}
	delimiter, err := resolveDelimiter(opts.Delimiter)
	if err != nil {
		return err
	}

	out := w
	var tw *transform.Writer
	if enc != nil {
		tw = transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder()))
		out = tw
	}

	cw := csv.NewWriter(out)
	cw.Comma = delimiter
	cw.UseCRLF = true

	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("write %s header: %w", table.Name, err)
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("write %s rows: %w", table.Name, err)
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			return fmt.Errorf("encode %s: %w", table.Name, err)
		}
	}
	return nil
}

// resolveEncoding returns nil for UTF-8.
func resolveEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	if canonical, err := htmlindex.Name(enc); err == nil && canonical == "utf-8" {
		return nil, nil
	}
	return enc, nil
}

func resolveDelimiter(r rune) (rune, error) {
	if r == 0 {
		return DefaultDelimiter, nil
	}
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError || !utf8.ValidRune(r) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelimiter, r)
	}
	return r, nil
}

// ValidateCSVOptions checks the delimiter and encoding without writing.
func ValidateCSVOptions(opts CSVOptions) error {
	if _, err := resolveDelimiter(opts.Delimiter); err != nil {
		return err
	}
	_, err := resolveEncoding(opts.Encoding)
	return err
}

// CSVWriter writes every table of a report to its own file in a directory.
type CSVWriter struct {
	dir  string
	opts CSVOptions

	// written records the files produced by the last Write.
	written []string
}

// NewCSVWriter creates a CSVWriter that writes into dir. The directory must
// exist; see Scaffold.
func NewCSVWriter(dir string, opts CSVOptions) *CSVWriter {
	return &CSVWriter{dir: dir, opts: opts}
}

// Write creates one file per table, named after Table.FileName.
func (w *CSVWriter) Write(report *model.Report) (int, error) {
	w.written = w.written[:0]
	var total int
	for _, table := range report.Tables() {
		path := filepath.Join(w.dir, table.FileName)
		n, err := w.writeFile(path, table)
		total += n
		if err != nil {
			return total, err
		}
		w.written = append(w.written, path)
	}
	return total, nil
}

// Files returns the paths written by the last Write.
func (w *CSVWriter) Files() []string {
	out := make([]string, len(w.written))
	copy(out, w.written)
	return out
}

func (w *CSVWriter) writeFile(path string, table *model.Table) (n int, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // path is built from the report layout
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	cw := &countingWriter{w: f}
	if err := WriteTableCSV(cw, table, w.opts); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}
