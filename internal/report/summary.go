package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/geoinnova/projectreport/internal/model"
)

// SummaryWriter prints the number of records per table for terminal
// display.
type SummaryWriter struct {
	baseWriter
}

// NewSummaryWriter creates a SummaryWriter that outputs to the given writer.
func NewSummaryWriter(output io.Writer) *SummaryWriter {
	return &SummaryWriter{baseWriter: newBaseWriter(output)}
}

// Write prints a heading line and the per-table counts.
func (w *SummaryWriter) Write(report *model.Report) (int, error) {
	cw := &countingWriter{w: w.output}
	if _, err := fmt.Fprintf(cw, "Project: %s (%s)\n", report.ProjectName, sourceLabel(report)); err != nil {
		return cw.n, err
	}

	table := tablewriter.NewWriter(cw)
	table.Header("Section", "File", "Records")
	for _, t := range report.Tables() {
		if err := table.Append(sectionTitle(t), t.FileName, strconv.Itoa(t.Len())); err != nil {
			return cw.n, err
		}
	}
	if err := table.Render(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}
