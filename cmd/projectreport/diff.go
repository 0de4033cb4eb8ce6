package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/olekukonko/tablewriter"

	"github.com/geoinnova/projectreport/internal/database"
	"github.com/geoinnova/projectreport/internal/model"
)

type diffFormat int

const (
	diffFormatText diffFormat = iota
	diffFormatJSON
	diffFormatMarkdown
)

// ComparisonResult holds the differences between two runs of a project.
// Layers are matched by name, fields by layer and field name.
type ComparisonResult struct {
	ProjectName string     `json:"project_name"`
	PreviousRun RunSummary `json:"previous_run"`
	CurrentRun  RunSummary `json:"current_run"`

	// FileChanged is true when the project file fingerprints differ.
	FileChanged bool `json:"file_changed"`

	AddedLayers   []string      `json:"added_layers,omitempty"`
	RemovedLayers []string      `json:"removed_layers,omitempty"`
	ChangedLayers []LayerChange `json:"changed_layers,omitempty"`

	// AddedFields and RemovedFields hold "layer.field" names.
	AddedFields   []string `json:"added_fields,omitempty"`
	RemovedFields []string `json:"removed_fields,omitempty"`
}

// RunSummary describes one side of a comparison.
type RunSummary struct {
	ID          int64     `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Fingerprint string    `json:"fingerprint"`
	Layers      int       `json:"layers"`
	Fields      int       `json:"fields"`
	Layouts     int       `json:"layouts"`
}

// LayerChange is one changed attribute of a layer present in both runs.
type LayerChange struct {
	Layer     string `json:"layer"`
	Attribute string `json:"attribute"`
	Previous  string `json:"previous"`
	Current   string `json:"current"`
}

// Unchanged reports whether the runs describe the same layers and fields.
func (c *ComparisonResult) Unchanged() bool {
	return len(c.AddedLayers) == 0 && len(c.RemovedLayers) == 0 &&
		len(c.ChangedLayers) == 0 &&
		len(c.AddedFields) == 0 && len(c.RemovedFields) == 0
}

func summarize(e database.Entry) RunSummary {
	return RunSummary{
		ID:          e.ID,
		GeneratedAt: e.GeneratedAt,
		Fingerprint: e.Fingerprint,
		Layers:      e.LayerCount,
		Fields:      e.FieldCount,
		Layouts:     e.LayoutCount,
	}
}

// compareReports compares the stored reports of two runs.
func compareReports(previousEntry, currentEntry database.Entry, previous, current *model.Report) *ComparisonResult {
	result := &ComparisonResult{
		ProjectName: current.ProjectName,
		PreviousRun: summarize(previousEntry),
		CurrentRun:  summarize(currentEntry),
		FileChanged: previous.Fingerprint != current.Fingerprint,
	}

	previousLayers := layersByName(previous.Layers)
	currentLayers := layersByName(current.Layers)
	result.AddedLayers = missingKeys(currentLayers, previousLayers)
	result.RemovedLayers = missingKeys(previousLayers, currentLayers)

	for _, name := range sortedKeys(currentLayers) {
		before, ok := previousLayers[name]
		if !ok {
			continue
		}
		result.ChangedLayers = append(result.ChangedLayers, layerChanges(before, currentLayers[name])...)
	}

	previousFields := fieldSet(previous.Fields)
	currentFields := fieldSet(current.Fields)
	result.AddedFields = missingKeys(currentFields, previousFields)
	result.RemovedFields = missingKeys(previousFields, currentFields)

	return result
}

func layerChanges(before, after model.LayerRow) []LayerChange {
	attributes := []struct {
		name          string
		before, after string
	}{
		{"data source", before.PathURL, after.PathURL},
		{"CRS", before.CRS, after.CRS},
		{"storage", before.Storage, after.Storage},
		{"geometry", before.GeometryType, after.GeometryType},
	}

	var changes []LayerChange
	for _, a := range attributes {
		if a.before != a.after {
			changes = append(changes, LayerChange{
				Layer:     after.Name,
				Attribute: a.name,
				Previous:  a.before,
				Current:   a.after,
			})
		}
	}
	return changes
}

// layersByName indexes layers by name. With duplicate names the first
// layer wins.
func layersByName(rows []model.LayerRow) map[string]model.LayerRow {
	m := make(map[string]model.LayerRow, len(rows))
	for _, r := range rows {
		if _, ok := m[r.Name]; !ok {
			m[r.Name] = r
		}
	}
	return m
}

func fieldSet(rows []model.FieldRow) map[string]struct{} {
	m := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		m[r.Layer+"."+r.Name] = struct{}{}
	}
	return m
}

// missingKeys returns the sorted keys of a that are not in b.
func missingKeys[A, B any](a map[string]A, b map[string]B) []string {
	var keys []string
	for k := range a {
		if _, ok := b[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// writeDiffText writes the comparison for terminal display.
func writeDiffText(out io.Writer, result *ComparisonResult) error {
	fmt.Fprintf(out, "Run comparison: %s\n", result.ProjectName)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nPrevious run: #%d %s\n", result.PreviousRun.ID,
		result.PreviousRun.GeneratedAt.Local().Format(historyTimeFormat))
	fmt.Fprintf(out, "Current run:  #%d %s\n", result.CurrentRun.ID,
		result.CurrentRun.GeneratedAt.Local().Format(historyTimeFormat))
	if !result.FileChanged {
		fmt.Fprintln(out, "Project file unchanged")
	}
	fmt.Fprintln(out)

	table := tablewriter.NewWriter(out)
	table.Header("Section", "Previous", "Current", "Change")
	for _, row := range countRows(result) {
		if err := table.Append(row[0], row[1], row[2], row[3]); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if result.Unchanged() {
		fmt.Fprintln(out, "\nNo layer or field changes.")
		return nil
	}

	writeList(out, "Added layers", "+", result.AddedLayers)
	writeList(out, "Removed layers", "-", result.RemovedLayers)
	if len(result.ChangedLayers) > 0 {
		fmt.Fprintf(out, "\nChanged layers (%d):\n", len(result.ChangedLayers))
		for _, c := range result.ChangedLayers {
			fmt.Fprintf(out, "  [~] %s %s: %s -> %s\n", c.Layer, c.Attribute, c.Previous, c.Current)
		}
	}
	writeList(out, "Added fields", "+", result.AddedFields)
	writeList(out, "Removed fields", "-", result.RemovedFields)
	return nil
}

func writeList(out io.Writer, title, marker string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s (%d):\n", title, len(items))
	for _, item := range items {
		fmt.Fprintf(out, "  [%s] %s\n", marker, item)
	}
}

// writeDiffMarkdown writes the comparison as a Markdown document.
func writeDiffMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)

	md.H1("Run comparison: " + result.ProjectName)
	md.PlainText("")
	md.PlainTextf("Run #%d (%s) compared with run #%d (%s).",
		result.CurrentRun.ID, result.CurrentRun.GeneratedAt.Format(historyTimeFormat),
		result.PreviousRun.ID, result.PreviousRun.GeneratedAt.Format(historyTimeFormat))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Section", "Previous", "Current", "Change"},
		Rows:   countRows(result),
	})
	md.PlainText("")

	if result.Unchanged() {
		md.Note("No layer or field changes.")
		return md.Build()
	}

	writeMarkdownList(md, "Added layers", result.AddedLayers)
	writeMarkdownList(md, "Removed layers", result.RemovedLayers)
	if len(result.ChangedLayers) > 0 {
		md.H2(fmt.Sprintf("Changed layers (%d)", len(result.ChangedLayers)))
		md.PlainText("")
		rows := make([][]string, len(result.ChangedLayers))
		for i, c := range result.ChangedLayers {
			rows[i] = []string{c.Layer, c.Attribute, c.Previous, c.Current}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Layer", "Attribute", "Previous", "Current"},
			Rows:   rows,
		})
		md.PlainText("")
	}
	writeMarkdownList(md, "Added fields", result.AddedFields)
	writeMarkdownList(md, "Removed fields", result.RemovedFields)

	return md.Build()
}

func writeMarkdownList(md *markdown.Markdown, title string, items []string) {
	if len(items) == 0 {
		return
	}
	md.H2(fmt.Sprintf("%s (%d)", title, len(items)))
	md.PlainText("")
	md.BulletList(items...)
	md.PlainText("")
}

func countRows(result *ComparisonResult) [][]string {
	prev, cur := result.PreviousRun, result.CurrentRun
	return [][]string{
		{"Layers", strconv.Itoa(prev.Layers), strconv.Itoa(cur.Layers), formatDelta(cur.Layers - prev.Layers)},
		{"Fields", strconv.Itoa(prev.Fields), strconv.Itoa(cur.Fields), formatDelta(cur.Fields - prev.Fields)},
		{"Layouts", strconv.Itoa(prev.Layouts), strconv.Itoa(cur.Layouts), formatDelta(cur.Layouts - prev.Layouts)},
	}
}

// formatDelta formats a count change with its sign.
func formatDelta(delta int) string {
	switch {
	case delta > 0:
		return "+" + strconv.Itoa(delta)
	case delta < 0:
		return strconv.Itoa(delta)
	default:
		return "0"
	}
}
