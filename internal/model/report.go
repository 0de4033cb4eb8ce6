package model

import "time"

// Table names, also used as keys in Report.Table.
const (
	TableProject   = "project"
	TableLayers    = "layers"
	TableFields    = "fields"
	TableLayouts   = "layouts"
	TableRelations = "relations"
	TableJoins     = "joins"
)

// Table is a rendered view of one row collection: column names plus string
// cells. Writers only deal with tables, never with the typed rows.
type Table struct {
	Name     string     `json:"name"`
	Title    string     `json:"title"`
	FileName string     `json:"file_name"`
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// Report is the result of one extraction pass over a project.
type Report struct {
	// ProjectName is the file base name used for output paths.
	ProjectName string `json:"project_name"`

	// SourcePath is the project file the report was generated from.
	SourcePath string `json:"source_path,omitempty"`

	// Fingerprint identifies the exact project file contents. Empty when the
	// project did not come from a file.
	Fingerprint string `json:"fingerprint,omitempty"`

	// GeneratedAt is the time the extraction ran.
	GeneratedAt time.Time `json:"generated_at"`

	Project   ProjectRow    `json:"project"`
	Layers    []LayerRow    `json:"layers"`
	Fields    []FieldRow    `json:"fields"`
	Layouts   []LayoutRow   `json:"layouts"`
	Relations []RelationRow `json:"relations"`
	Joins     []JoinRow     `json:"joins"`
}

// NewReport creates an empty report for the named project.
func NewReport(projectName string) *Report {
	return &Report{
		ProjectName: projectName,
		GeneratedAt: time.Now(),
		Layers:      make([]LayerRow, 0),
		Fields:      make([]FieldRow, 0),
		Layouts:     make([]LayoutRow, 0),
		Relations:   make([]RelationRow, 0),
		Joins:       make([]JoinRow, 0),
	}
}

// Tables returns the report as tables in their fixed output order.
func (r *Report) Tables() []*Table {
	return []*Table{
		newTable(TableProject, "Project", "01_project.csv", ProjectColumns, [][]string{r.Project.Record()}),
		newTable(TableLayers, "Layers", "02_layers.csv", LayerColumns, records(r.Layers)),
		newTable(TableFields, "Fields", "03_fields.csv", FieldColumns, records(r.Fields)),
		newTable(TableLayouts, "Layouts", "04_layouts.csv", LayoutColumns, records(r.Layouts)),
		newTable(TableRelations, "Relations", "05_relations.csv", RelationColumns, records(r.Relations)),
		newTable(TableJoins, "Joins", "06_joins.csv", JoinColumns, records(r.Joins)),
	}
}

// Table returns the named table.
func (r *Report) Table(name string) (*Table, bool) {
	for _, t := range r.Tables() {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// recorder is implemented by every row type.
type recorder interface {
	Record() []string
}

func records[T recorder](rows []T) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = row.Record()
	}
	return out
}

func newTable(name, title, fileName string, columns []string, rows [][]string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		Name:     name,
		Title:    title,
		FileName: fileName,
		Columns:  cols,
		Rows:     rows,
	}
}
