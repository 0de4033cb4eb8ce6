package qgis

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/geoinnova/projectreport/internal/model"
)

// Project file extensions.
const (
	ExtQGS = ".qgs"
	ExtQGZ = ".qgz"
)

// IsProjectFile reports whether path has a project file extension.
func IsProjectFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtQGS, ExtQGZ:
		return true
	default:
		return false
	}
}

// Open reads the project file at path. The returned project's FileName is
// the absolute path of the file.
func Open(path string) (*model.Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ExtQGS:
		f, err := os.Open(path) //nolint:gosec // user supplied project path
		if err != nil {
			return nil, fmt.Errorf("open project: %w", err)
		}
		defer func() { _ = f.Close() }()
		return Decode(f, abs)
	case ExtQGZ:
		return openArchive(path, abs)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// openArchive decodes the first .qgs entry of a .qgz archive.
func openArchive(path, fileName string) (*model.Project, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open project archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(entry.Name), ExtQGS) {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open archive entry %s: %w", entry.Name, err)
		}
		defer func() { _ = rc.Close() }()
		return Decode(rc, fileName)
	}
	return nil, fmt.Errorf("%w: %s", ErrNoProjectEntry, path)
}

// Decode parses a .qgs document. fileName is recorded as the project file
// name and used to resolve the home path when the document has none.
func Decode(r io.Reader, fileName string) (*model.Project, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if doc.XMLName.Local != "qgis" {
		return nil, fmt.Errorf("%w: root element <%s>", ErrNotAProject, doc.XMLName.Local)
	}
	return doc.project(fileName), nil
}

// charsetReader lets documents declare a non UTF-8 encoding in their XML
// prolog.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported document encoding %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

func (d *document) project(fileName string) *model.Project {
	p := &model.Project{
		Title:     strings.TrimSpace(d.Title),
		FileName:  fileName,
		HomePath:  d.HomePath.Path,
		CRS:       strings.TrimSpace(d.ProjectCRS.AuthID),
		Created:   parseTime(d.Metadata.Creation),
		LastSaved: parseTime(d.SaveDateTime),
	}
	if p.Title == "" {
		p.Title = d.ProjectName
	}
	if p.HomePath == "" && fileName != "" {
		p.HomePath = filepath.Dir(fileName)
	}

	for i := range d.Layers {
		p.Layers = append(p.Layers, d.Layers[i].layer())
	}
	resolveJoinPrefixes(p)

	for _, rel := range d.Relations {
		p.Relations = append(p.Relations, rel.relation())
	}

	for _, item := range d.Layouts.Items {
		if l, ok := item.layout(); ok {
			p.Layouts = append(p.Layouts, l)
		}
	}
	return p
}

func (m *mapLayer) layer() model.Layer {
	info := model.LayerInfo{
		LayerID:     strings.TrimSpace(m.ID),
		LayerName:   m.LayerName,
		LayerCRS:    strings.TrimSpace(m.SRS.AuthID),
		LayerSource: m.DataSource,
		Provider:    strings.TrimSpace(m.Provider.Key),
	}

	switch m.Type {
	case "vector":
		geometry := m.Geometry
		if geometry == "" {
			geometry = m.WKBType
		}
		return &model.VectorLayer{
			LayerInfo:    info,
			StorageType:  StorageType(info.Provider, info.LayerSource),
			Encoding:     m.Provider.Encoding,
			Geometry:     model.ParseGeometryType(geometry),
			FeatureCount: model.UnknownFeatureCount,
			Fields:       m.fields(),
			Joins:        m.joins(),
		}
	case "raster":
		return &model.RasterLayer{LayerInfo: info}
	default:
		return &model.OtherLayer{LayerInfo: info, Kind: m.Type}
	}
}

// fields lists the configured fields with their aliases. Field types are
// not part of the document.
func (m *mapLayer) fields() []model.Field {
	aliases := make(map[string]string, len(m.Aliases))
	for _, a := range m.Aliases {
		aliases[a.Field] = a.Name
	}

	names := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		names = append(names, f.Name)
	}
	// Older documents only list aliases.
	if len(names) == 0 {
		for _, a := range m.Aliases {
			names = append(names, a.Field)
		}
	}

	fields := make([]model.Field, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		fields = append(fields, model.Field{Name: name, Alias: aliases[name]})
	}
	return fields
}

func (m *mapLayer) joins() []model.Join {
	if len(m.Joins) == 0 {
		return nil
	}
	joins := make([]model.Join, 0, len(m.Joins))
	for _, j := range m.Joins {
		join := model.Join{
			JoinLayerID:    j.JoinLayerID,
			TargetField:    j.TargetField,
			JoinField:      j.JoinField,
			MemoryCache:    parseBool(j.MemoryCache),
			Editable:       parseBool(j.Editable),
			UpsertOnEdit:   parseBool(j.UpsertOnEdit),
			CascadedDelete: parseBool(j.CascadedDelete),
		}
		if parseBool(j.HasCustomPrefix) {
			join.Prefix = j.CustomPrefix
		}
		for _, f := range j.Subset {
			join.JoinedFields = append(join.JoinedFields, f.Name)
		}
		joins = append(joins, join)
	}
	return joins
}

// resolveJoinPrefixes applies the default "<join layer name>_" prefix to
// joins saved without a custom one. It runs once all layers are known.
func resolveJoinPrefixes(p *model.Project) {
	for _, l := range p.Layers {
		vector, ok := l.(*model.VectorLayer)
		if !ok {
			continue
		}
		for i := range vector.Joins {
			j := &vector.Joins[i]
			if j.Prefix == "" {
				j.Prefix = p.LayerName(j.JoinLayerID) + "_"
			}
		}
	}
}

func (r relation) relation() model.Relation {
	rel := model.Relation{
		ID:                 r.ID,
		Name:               r.Name,
		ReferencingLayerID: r.ReferencingLayer,
		ReferencedLayerID:  r.ReferencedLayer,
		Strength:           model.RelationAssociation,
	}
	if strings.EqualFold(r.Strength, string(model.RelationComposition)) {
		rel.Strength = model.RelationComposition
	}
	for _, ref := range r.FieldRefs {
		rel.Fields = append(rel.Fields, model.FieldPair{
			Referencing: ref.Referencing,
			Referenced:  ref.Referenced,
		})
	}
	return rel
}

func (e layoutElement) layout() (model.Layout, bool) {
	l := model.Layout{Name: e.Name}
	switch e.XMLName.Local {
	case "Layout":
		l.Type = model.LayoutPrint
		if e.Atlas != nil {
			l.Atlas = &model.Atlas{
				Enabled:         parseBool(e.Atlas.Enabled),
				CoverageLayerID: e.Atlas.CoverageLayer,
			}
		}
	case "Report":
		l.Type = model.LayoutReport
	default:
		return l, false
	}
	return l, true
}

// timeLayouts are the timestamp formats found in project documents, most
// specific first.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTime returns the zero time for empty or unparsable values.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
