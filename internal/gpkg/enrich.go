package gpkg

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/geoinnova/projectreport/internal/model"
	"github.com/geoinnova/projectreport/internal/qgis"
)

// Enrich fills field types, feature counts and geometry types of the
// project's GeoPackage layers from their files. Layers whose file is missing
// or unreadable keep what the project document says and a warning is
// logged. It returns the number of layers enriched.
func Enrich(ctx context.Context, p *model.Project, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}

	files := make(map[string]*File)
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()

	enriched := 0
	for _, l := range p.Layers {
		if ctx.Err() != nil {
			break
		}
		vector, ok := l.(*model.VectorLayer)
		if !ok || vector.StorageType != "GPKG" {
			continue
		}
		path, ok := qgis.LocalPath(p, vector)
		if !ok {
			continue
		}

		f, ok := files[path]
		if !ok {
			if _, err := os.Stat(path); err != nil {
				logger.Warn("geopackage not readable", "layer", vector.Name(), "path", path, "error", err)
				continue
			}
			var err error
			f, err = Open(path)
			if err != nil {
				logger.Warn("geopackage not readable", "layer", vector.Name(), "path", path, "error", err)
				continue
			}
			files[path] = f
		}

		if err := enrichLayer(ctx, f, vector); err != nil {
			logger.Warn("could not inspect geopackage layer", "layer", vector.Name(), "path", path, "error", err)
			continue
		}
		logger.Debug("layer inspected", "layer", vector.Name(), "features", vector.FeatureCount)
		enriched++
	}
	return enriched
}

func enrichLayer(ctx context.Context, f *File, layer *model.VectorLayer) error {
	table, ok := qgis.SourceOption(layer.Source(), "layername")
	if !ok || table == "" {
		var err error
		if table, err = f.DefaultTable(ctx); err != nil {
			return err
		}
	}

	info, err := f.Inspect(ctx, table)
	if err != nil {
		return err
	}

	layer.Fields = mergeFields(layer.Fields, info.Fields)
	layer.FeatureCount = info.FeatureCount
	if layer.Geometry == model.GeometryUnknown {
		layer.Geometry = info.Geometry
	}
	return nil
}

// mergeFields keeps the file's column order and types, and the aliases
// configured in the project. Project fields missing from the file are
// virtual or expression fields and are appended untouched.
func mergeFields(configured, stored []model.Field) []model.Field {
	byName := make(map[string]model.Field, len(configured))
	for _, f := range configured {
		byName[strings.ToLower(f.Name)] = f
	}

	merged := make([]model.Field, 0, len(stored)+len(configured))
	seen := make(map[string]bool, len(stored))
	for _, f := range stored {
		key := strings.ToLower(f.Name)
		if c, ok := byName[key]; ok {
			if c.Alias != "" {
				f.Alias = c.Alias
			}
			if c.Comment != "" {
				f.Comment = c.Comment
			}
		}
		seen[key] = true
		merged = append(merged, f)
	}
	for _, f := range configured {
		if !seen[strings.ToLower(f.Name)] {
			merged = append(merged, f)
		}
	}
	return merged
}
