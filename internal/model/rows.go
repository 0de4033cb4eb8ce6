package model

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date format used for every date cell.
const DateLayout = "2006-01-02"

// Column names of each table, in output order.
var (
	ProjectColumns = []string{
		"title", "fileName", "homePath", "crs", "layers_count", "creationDate", "lastSaveDate",
	}
	LayerColumns = []string{
		"name", "crs", "path_url", "storage", "encoding", "geometry_type", "features_count",
	}
	FieldColumns = []string{
		"layer", "field_name", "display_name", "alias", "comment", "type_name", "type", "length", "precision",
	}
	LayoutColumns = []string{
		"layout_name", "layout_type", "atlas", "atlas_coverageLayer_name",
	}
	RelationColumns = []string{
		"relation_id", "relation_name", "referencing_layer", "referencing_fields",
		"referenced_layer", "referenced_fields", "strength",
	}
	JoinColumns = []string{
		"layer", "join_layer", "target_field", "join_field", "prefix", "memory_cache", "editable",
		"upsert_on_edit", "cascaded_delete", "joined_fields",
	}
)

// ProjectRow holds the project properties.
type ProjectRow struct {
	Title        string    `json:"title"`
	FileName     string    `json:"file_name"`
	HomePath     string    `json:"home_path"`
	CRS          string    `json:"crs"`
	LayerCount   int       `json:"layers_count"`
	CreationDate time.Time `json:"creation_date"`
	LastSaveDate time.Time `json:"last_save_date"`
}

// Record returns the row cells in ProjectColumns order.
func (r ProjectRow) Record() []string {
	return []string{
		r.Title,
		r.FileName,
		r.HomePath,
		r.CRS,
		strconv.Itoa(r.LayerCount),
		formatDate(r.CreationDate),
		formatDate(r.LastSaveDate),
	}
}

// LayerRow describes one map layer.
type LayerRow struct {
	Name         string `json:"name"`
	CRS          string `json:"crs"`
	PathURL      string `json:"path_url"`
	Storage      string `json:"storage"`
	Encoding     string `json:"encoding"`
	GeometryType string `json:"geometry_type"`
	FeatureCount int64  `json:"features_count"`

	// Vector is false for raster and other non-vector layers, whose
	// encoding, geometry and count cells stay empty.
	Vector bool `json:"vector"`
}

// Record returns the row cells in LayerColumns order.
func (r LayerRow) Record() []string {
	count := ""
	if r.Vector && r.FeatureCount >= 0 {
		count = strconv.FormatInt(r.FeatureCount, 10)
	}
	return []string{r.Name, r.CRS, r.PathURL, r.Storage, r.Encoding, r.GeometryType, count}
}

// FieldRow describes one attribute of a vector layer.
type FieldRow struct {
	Layer       string      `json:"layer"`
	Name        string      `json:"field_name"`
	DisplayName string      `json:"display_name"`
	Alias       string      `json:"alias"`
	Comment     string      `json:"comment"`
	TypeName    string      `json:"type_name"`
	Type        VariantType `json:"type"`
	Length      int         `json:"length"`
	Precision   int         `json:"precision"`
}

// Record returns the row cells in FieldColumns order.
func (r FieldRow) Record() []string {
	return []string{
		r.Layer,
		r.Name,
		r.DisplayName,
		r.Alias,
		r.Comment,
		r.TypeName,
		strconv.Itoa(int(r.Type)),
		strconv.Itoa(r.Length),
		strconv.Itoa(r.Precision),
	}
}

// LayoutRow describes one print layout or report.
type LayoutRow struct {
	Name               string     `json:"layout_name"`
	Type               LayoutType `json:"layout_type"`
	Atlas              bool       `json:"atlas"`
	AtlasCoverageLayer string     `json:"atlas_coverage_layer_name"`

	// AtlasEnabled tells whether atlas generation is switched on. It is
	// only part of the JSON report.
	AtlasEnabled bool `json:"atlas_enabled"`
}

// Record returns the row cells in LayoutColumns order.
func (r LayoutRow) Record() []string {
	return []string{r.Name, r.Type.String(), formatBool(r.Atlas), r.AtlasCoverageLayer}
}

// RelationRow describes one relation between layers.
type RelationRow struct {
	ID                string   `json:"relation_id"`
	Name              string   `json:"relation_name"`
	ReferencingLayer  string   `json:"referencing_layer"`
	ReferencingFields []string `json:"referencing_fields"`
	ReferencedLayer   string   `json:"referenced_layer"`
	ReferencedFields  []string `json:"referenced_fields"`
	Strength          string   `json:"strength"`
}

// Record returns the row cells in RelationColumns order.
func (r RelationRow) Record() []string {
	return []string{
		r.ID,
		r.Name,
		r.ReferencingLayer,
		strings.Join(r.ReferencingFields, ","),
		r.ReferencedLayer,
		strings.Join(r.ReferencedFields, ","),
		r.Strength,
	}
}

// JoinRow describes one table join.
type JoinRow struct {
	Layer          string   `json:"layer"`
	JoinLayer      string   `json:"join_layer"`
	TargetField    string   `json:"target_field"`
	JoinField      string   `json:"join_field"`
	Prefix         string   `json:"prefix"`
	MemoryCache    bool     `json:"memory_cache"`
	Editable       bool     `json:"editable"`
	UpsertOnEdit   bool     `json:"upsert_on_edit"`
	CascadedDelete bool     `json:"cascaded_delete"`
	JoinedFields   []string `json:"joined_fields"`
}

// Record returns the row cells in JoinColumns order.
func (r JoinRow) Record() []string {
	return []string{
		r.Layer,
		r.JoinLayer,
		r.TargetField,
		r.JoinField,
		r.Prefix,
		formatBool(r.MemoryCache),
		formatBool(r.Editable),
		formatBool(r.UpsertOnEdit),
		formatBool(r.CascadedDelete),
		strings.Join(r.JoinedFields, ","),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// formatBool writes booleans capitalized, matching reports produced by the
// desktop plugin.
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
