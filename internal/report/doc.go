// Package report serializes a model.Report into output files.
//
// Writers for each format:
//   - CSVWriter: one delimited file per table in the report's csv directory
//   - HTMLWriter: a single static HTML page with one table per section
//   - MarkdownWriter: the same layout as GitHub flavored Markdown
//   - JSONWriter: the typed report for tool integration
//   - SummaryWriter: row counts per table for terminal display
//
// Writers implement the Writer interface and can be combined with
// MultiWriter. Directory handling (report directory, csv subdirectory,
// cleanup) lives in scaffold.go.
package report
