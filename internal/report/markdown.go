package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/geoinnova/projectreport/internal/model"
)

// MarkdownWriter outputs reports as GitHub flavored Markdown, one table per
// section.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	cw := &countingWriter{w: w.output}
	md := markdown.NewMarkdown(cw)

	md.H1(report.ProjectName + " project report")
	md.PlainText("")
	md.PlainTextf("Generated %s from `%s`.",
		report.GeneratedAt.Format("2006-01-02 15:04:05 MST"), sourceLabel(report))
	md.PlainText("")

	tables := report.Tables()
	w.writeContents(md, tables)
	for _, table := range tables {
		w.writeTable(md, table)
	}

	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by projectreport*")

	err := md.Build()
	return cw.n, err
}

// writeContents writes a row-count overview of all sections.
func (w *MarkdownWriter) writeContents(md *markdown.Markdown, tables []*model.Table) {
	rows := make([][]string, len(tables))
	for i, table := range tables {
		rows[i] = []string{sectionTitle(table), "`" + table.FileName + "`", strconv.Itoa(table.Len())}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Section", "CSV file", "Records"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeTable(md *markdown.Markdown, table *model.Table) {
	md.H2(sectionTitle(table))
	md.PlainText("")

	if table.Empty() {
		md.Note("No records.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		cells := make([]string, len(table.Columns))
		for j := range cells {
			if j < len(row) {
				cells[j] = escapeMarkdownCell(row[j])
			}
		}
		rows[i] = cells
	}
	md.Table(markdown.TableSet{
		Header: table.Columns,
		Rows:   rows,
	})
	md.PlainText("")
}

// escapeMarkdownCell keeps a value inside its table cell: pipes would split
// the cell and line breaks would end the row.
func escapeMarkdownCell(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(s, "\n", "<br>")
}
