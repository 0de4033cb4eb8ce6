package extract

import (
	"log/slog"
	"time"

	"github.com/geoinnova/projectreport/internal/model"
)

// Options configures an extraction pass.
type Options struct {
	// RedactCredentials masks passwords and tokens in data source cells.
	RedactCredentials bool

	// Logger receives debug output about skipped or unresolved objects.
	// slog.Default() is used when nil.
	Logger *slog.Logger

	// Now overrides the report generation time. Used by tests.
	Now func() time.Time
}

// DefaultOptions returns options with credential redaction enabled.
func DefaultOptions() Options {
	return Options{RedactCredentials: true}
}

// Extract builds a report from the project object graph.
func Extract(project *model.Project, opts Options) (*model.Report, error) {
	if project == nil {
		return nil, ErrNilProject
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	report := model.NewReport(project.Name())
	report.SourcePath = project.FileName
	if opts.Now != nil {
		report.GeneratedAt = opts.Now()
	}

	report.Project = projectRow(project)

	for _, layer := range project.Layers {
		if layer == nil {
			continue
		}
		report.Layers = append(report.Layers, layerRow(layer, opts.RedactCredentials))

		vector, ok := layer.(*model.VectorLayer)
		if !ok {
			continue
		}
		report.Fields = append(report.Fields, fieldRows(vector)...)
		for _, join := range vector.Joins {
			report.Joins = append(report.Joins, joinRow(project, vector, join))
		}
	}

	for _, layout := range project.Layouts {
		row := layoutRow(project, layout)
		if layout.Atlas != nil && layout.Atlas.CoverageLayerID != "" && row.AtlasCoverageLayer == "" {
			logger.Debug("atlas coverage layer not found",
				"layout", layout.Name,
				"layer_id", layout.Atlas.CoverageLayerID,
			)
		}
		report.Layouts = append(report.Layouts, row)
	}

	for _, rel := range project.Relations {
		report.Relations = append(report.Relations, relationRow(project, rel))
	}

	logger.Debug("project extracted",
		"project", report.ProjectName,
		"layers", len(report.Layers),
		"fields", len(report.Fields),
		"layouts", len(report.Layouts),
		"relations", len(report.Relations),
		"joins", len(report.Joins),
	)

	return report, nil
}

func projectRow(p *model.Project) model.ProjectRow {
	return model.ProjectRow{
		Title:        p.Title,
		FileName:     p.FileName,
		HomePath:     p.HomePath,
		CRS:          p.CRS,
		LayerCount:   len(p.Layers),
		CreationDate: p.Created,
		LastSaveDate: p.LastSaved,
	}
}

func layerRow(layer model.Layer, redact bool) model.LayerRow {
	path := model.DataSourceURL(layer)
	if redact {
		path = model.RedactSource(path)
	}

	row := model.LayerRow{
		Name:    layer.Name(),
		CRS:     layer.CRS(),
		PathURL: path,
		Storage: layer.ProviderType(),
	}

	if vector, ok := layer.(*model.VectorLayer); ok {
		row.Vector = true
		row.Storage = vector.StorageType
		row.Encoding = vector.Encoding
		row.GeometryType = vector.Geometry.String()
		row.FeatureCount = vector.FeatureCount
	}
	return row
}

func fieldRows(layer *model.VectorLayer) []model.FieldRow {
	rows := make([]model.FieldRow, 0, len(layer.Fields))
	for _, f := range layer.Fields {
		rows = append(rows, model.FieldRow{
			Layer:       layer.Name(),
			Name:        f.Name,
			DisplayName: f.DisplayName(),
			Alias:       f.Alias,
			Comment:     f.Comment,
			TypeName:    f.TypeName,
			Type:        f.Type,
			Length:      f.Length,
			Precision:   f.Precision,
		})
	}
	return rows
}

// layoutRow reports an atlas only for print layouts whose coverage layer
// resolves to a layer of the project.
func layoutRow(p *model.Project, layout model.Layout) model.LayoutRow {
	row := model.LayoutRow{
		Name: layout.Name,
		Type: layout.Type,
	}
	if layout.Type != model.LayoutPrint || layout.Atlas == nil || layout.Atlas.CoverageLayerID == "" {
		return row
	}
	if coverage, ok := p.LayerByID(layout.Atlas.CoverageLayerID); ok {
		row.Atlas = true
		row.AtlasCoverageLayer = coverage.Name()
		row.AtlasEnabled = layout.Atlas.Enabled
	}
	return row
}

func relationRow(p *model.Project, rel model.Relation) model.RelationRow {
	referencing := make([]string, 0, len(rel.Fields))
	referenced := make([]string, 0, len(rel.Fields))
	for _, pair := range rel.Fields {
		referencing = append(referencing, pair.Referencing)
		referenced = append(referenced, pair.Referenced)
	}
	strength := rel.Strength
	if strength == "" {
		strength = model.RelationAssociation
	}
	return model.RelationRow{
		ID:                rel.ID,
		Name:              rel.Name,
		ReferencingLayer:  p.LayerName(rel.ReferencingLayerID),
		ReferencingFields: referencing,
		ReferencedLayer:   p.LayerName(rel.ReferencedLayerID),
		ReferencedFields:  referenced,
		Strength:          string(strength),
	}
}

func joinRow(p *model.Project, layer *model.VectorLayer, join model.Join) model.JoinRow {
	fields := make([]string, len(join.JoinedFields))
	copy(fields, join.JoinedFields)
	return model.JoinRow{
		Layer:          layer.Name(),
		JoinLayer:      p.LayerName(join.JoinLayerID),
		TargetField:    join.TargetField,
		JoinField:      join.JoinField,
		Prefix:         join.Prefix,
		MemoryCache:    join.MemoryCache,
		Editable:       join.Editable,
		UpsertOnEdit:   join.UpsertOnEdit,
		CascadedDelete: join.CascadedDelete,
		JoinedFields:   fields,
	}
}
