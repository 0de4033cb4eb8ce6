package model

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestProjectName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"/home/gis/projects/municipality.qgz", "municipality"},
		{"/home/gis/projects/city.v2.qgs", "city"},
		{`C:\GIS\Flood Risk.qgs`, "Flood Risk"},
		{"plain", "plain"},
		{"", "project"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := ProjectName(tt.in); got != tt.want {
				t.Errorf("ProjectName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRowRecords(t *testing.T) {
	t.Parallel()

	t.Run("project row formats dates and count", func(t *testing.T) {
		t.Parallel()
		row := ProjectRow{
			Title:        "Town plan",
			FileName:     "/p/town.qgz",
			HomePath:     "/p",
			CRS:          "EPSG:25830",
			LayerCount:   3,
			CreationDate: time.Date(2023, 1, 5, 10, 30, 0, 0, time.UTC),
		}
		want := []string{"Town plan", "/p/town.qgz", "/p", "EPSG:25830", "3", "2023-01-05", ""}
		if diff := cmp.Diff(want, row.Record()); diff != "" {
			t.Errorf("record mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("raster layer row leaves vector cells empty", func(t *testing.T) {
		t.Parallel()
		row := LayerRow{Name: "dem", CRS: "EPSG:4326", PathURL: "/d/dem.tif", Storage: "gdal", FeatureCount: 10}
		want := []string{"dem", "EPSG:4326", "/d/dem.tif", "gdal", "", "", ""}
		if diff := cmp.Diff(want, row.Record()); diff != "" {
			t.Errorf("record mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown feature count is empty", func(t *testing.T) {
		t.Parallel()
		row := LayerRow{Name: "roads", Vector: true, FeatureCount: UnknownFeatureCount}
		if got := row.Record()[6]; got != "" {
			t.Errorf("expected empty count, got %q", got)
		}
	})

	t.Run("layout row writes capitalized booleans", func(t *testing.T) {
		t.Parallel()
		row := LayoutRow{Name: "A3", Type: LayoutPrint, Atlas: true, AtlasCoverageLayer: "parcels"}
		want := []string{"A3", "PrintLayout", "True", "parcels"}
		if diff := cmp.Diff(want, row.Record()); diff != "" {
			t.Errorf("record mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("relation row joins field lists", func(t *testing.T) {
		t.Parallel()
		row := RelationRow{
			ID: "r1", Name: "owners",
			ReferencingLayer: "parcels", ReferencingFields: []string{"owner_id", "year"},
			ReferencedLayer: "owners", ReferencedFields: []string{"id", "year"},
			Strength: string(RelationComposition),
		}
		want := []string{"r1", "owners", "parcels", "owner_id,year", "owners", "id,year", "Composition"}
		if diff := cmp.Diff(want, row.Record()); diff != "" {
			t.Errorf("record mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestReportTables(t *testing.T) {
	t.Parallel()

	r := NewReport("town")
	r.Layers = append(r.Layers, LayerRow{Name: "roads", Vector: true, FeatureCount: 4})

	tables := r.Tables()
	wantNames := []string{TableProject, TableLayers, TableFields, TableLayouts, TableRelations, TableJoins}
	gotNames := make([]string, len(tables))
	for i, tbl := range tables {
		gotNames[i] = tbl.Name
		if len(tbl.Columns) == 0 {
			t.Errorf("table %s has no columns", tbl.Name)
		}
		for _, row := range tbl.Rows {
			if len(row) != len(tbl.Columns) {
				t.Errorf("table %s: row has %d cells, want %d", tbl.Name, len(row), len(tbl.Columns))
			}
		}
	}
	if diff := cmp.Diff(wantNames, gotNames); diff != "" {
		t.Errorf("table order mismatch (-want +got):\n%s", diff)
	}

	project, ok := r.Table(TableProject)
	if !ok || project.Len() != 1 {
		t.Fatalf("project table must always hold one row")
	}
	fields, _ := r.Table(TableFields)
	if !fields.Empty() {
		t.Errorf("expected empty fields table")
	}
	if fields.FileName != "03_fields.csv" {
		t.Errorf("unexpected file name %q", fields.FileName)
	}
	if _, ok := r.Table("missing"); ok {
		t.Error("unknown table must not be found")
	}
}

func TestGeometryType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want GeometryType
	}{
		{"Point", GeometryPoint},
		{"MultiPointZ", GeometryPoint},
		{"LineString", GeometryLine},
		{"CompoundCurve", GeometryLine},
		{"CurvePolygon", GeometryPolygon},
		{"MultiSurface", GeometryPolygon},
		{"No geometry", GeometryNull},
		{"", GeometryUnknown},
		{"GeometryCollection", GeometryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := ParseGeometryType(tt.in); got != tt.want {
				t.Errorf("ParseGeometryType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if GeometryNull.String() != "No geometry" || GeometryLine.String() != "Line" {
		t.Error("unexpected display strings")
	}
}

func TestFieldDisplayName(t *testing.T) {
	t.Parallel()

	if got := (Field{Name: "pop", Alias: "Population"}).DisplayName(); got != "Population" {
		t.Errorf("got %q", got)
	}
	if got := (Field{Name: "pop"}).DisplayName(); got != "pop" {
		t.Errorf("got %q", got)
	}
	if VariantString.String() != "String" || VariantType(99).String() != "99" {
		t.Error("unexpected variant names")
	}
}
