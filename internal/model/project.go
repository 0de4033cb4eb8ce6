package model

import (
	"path/filepath"
	"strings"
	"time"
)

// Project is the in-memory view of an open GIS project document.
// It is populated by a reader (see package qgis) or directly by an embedding
// application, and consumed by the extraction pass.
type Project struct {
	// Title is the user-visible project title. It may be empty.
	Title string

	// FileName is the full path of the project file as the host reports it.
	FileName string

	// HomePath is the directory relative paths in the project resolve against.
	HomePath string

	// CRS is the authority id of the project coordinate reference system
	// (e.g. "EPSG:25830"). Empty when the project has no CRS.
	CRS string

	// Created is the creation timestamp from the project metadata.
	Created time.Time

	// LastSaved is the timestamp of the last save.
	LastSaved time.Time

	// Layers lists the map layers in document order.
	Layers []Layer

	// Relations lists the inter-layer relations.
	Relations []Relation

	// Layouts lists the print layouts and reports.
	Layouts []Layout
}

// Name returns the project name used for report directories and files:
// the base name of FileName up to its first dot.
func (p *Project) Name() string {
	return ProjectName(p.FileName)
}

// LayerByID returns the layer with the given id.
func (p *Project) LayerByID(id string) (Layer, bool) {
	for _, l := range p.Layers {
		if l.ID() == id {
			return l, true
		}
	}
	return nil, false
}

// LayerName resolves a layer id to its name. Unknown ids are returned as-is
// so dangling references stay visible in the report.
func (p *Project) LayerName(id string) string {
	if l, ok := p.LayerByID(id); ok {
		return l.Name()
	}
	return id
}

// ProjectName derives the report name from a project file path.
// "/data/My.Project.qgz" yields "My". Both slash styles are accepted since
// project paths may come from another OS.
func ProjectName(fileName string) string {
	base := filepath.Base(filepath.ToSlash(fileName))
	if i := strings.LastIndex(base, "\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	if base == "" || base == "/" {
		return "project"
	}
	return base
}
