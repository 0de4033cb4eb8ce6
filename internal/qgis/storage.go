package qgis

import (
	"path/filepath"
	"strings"

	"github.com/geoinnova/projectreport/internal/model"
)

// providerStorage maps provider keys to the storage description their
// provider reports.
var providerStorage = map[string]string{
	"postgres":            "PostgreSQL database with PostGIS extension",
	"spatialite":          "SQLite database with SpatiaLite extension",
	"memory":              "Memory storage",
	"delimitedtext":       "Delimited text file",
	"wfs":                 "WFS",
	"oapif":               "OGC API - Features",
	"mssql":               "MSSQL spatial database",
	"oracle":              "Oracle database",
	"hana":                "SAP HANA database",
	"virtual":             "Virtual layer",
	"arcgisfeatureserver": "ArcGIS Feature Service",
	"gpx":                 "GPS eXchange file",
}

// ogrDrivers maps file extensions to OGR driver names.
var ogrDrivers = map[string]string{
	".shp":     "ESRI Shapefile",
	".dbf":     "ESRI Shapefile",
	".gpkg":    "GPKG",
	".geojson": "GeoJSON",
	".json":    "GeoJSON",
	".csv":     "CSV",
	".kml":     "LIBKML",
	".kmz":     "LIBKML",
	".gml":     "GML",
	".gpx":     "GPX",
	".sqlite":  "SQLite",
	".db":      "SQLite",
	".tab":     "MapInfo File",
	".mif":     "MapInfo File",
	".dxf":     "DXF",
	".fgb":     "FlatGeobuf",
	".gdb":     "OpenFileGDB",
	".xlsx":    "XLSX",
	".xls":     "XLS",
	".ods":     "ODS",
	".parquet": "Parquet",
}

// StorageType describes where a vector layer's data lives, the way the
// layer's data provider names it. OGR sources are identified by their file
// extension; unknown combinations fall back to the provider key.
func StorageType(providerKey, source string) string {
	key := strings.ToLower(providerKey)
	if key == "ogr" {
		ext := strings.ToLower(filepath.Ext(SourcePath(source)))
		if driver, ok := ogrDrivers[ext]; ok {
			return driver
		}
		return "OGR"
	}
	if s, ok := providerStorage[key]; ok {
		return s
	}
	return providerKey
}

// SourcePath returns the file part of a file based data source, dropping
// the "|layername=…" style options.
func SourcePath(source string) string {
	path, _, _ := strings.Cut(source, "|")
	return strings.TrimSpace(path)
}

// SourceOption returns the value of a "|key=value" option of a file based
// data source.
func SourceOption(source, key string) (string, bool) {
	parts := strings.Split(source, "|")
	for _, part := range parts[1:] {
		k, v, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// LocalPath resolves the file a layer reads from. Relative sources are
// joined to the directory of the project file, or to the project home path
// when the file name is unknown. The second result is false for sources
// that are not local files.
func LocalPath(p *model.Project, l model.Layer) (string, bool) {
	switch strings.ToLower(l.ProviderType()) {
	case "ogr", "gdal", "spatialite":
	default:
		return "", false
	}
	path := SourcePath(l.Source())
	if strings.EqualFold(l.ProviderType(), "spatialite") {
		path, _ = model.URIParam(l.Source(), "dbname")
	}
	if path == "" || strings.Contains(path, "://") || strings.HasPrefix(path, "/vsi") {
		return "", false
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectDir(p), path)
	}
	return filepath.Clean(path), true
}

// projectDir is the directory relative data sources are resolved against.
func projectDir(p *model.Project) string {
	if p.FileName != "" {
		return filepath.Dir(p.FileName)
	}
	return p.HomePath
}
