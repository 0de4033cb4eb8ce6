package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/geoinnova/projectreport/internal/config"
	"github.com/geoinnova/projectreport/internal/report"
)

const townProject = `<?xml version="1.0" encoding="UTF-8"?>
<qgis projectname="Town" saveDateTime="2024-03-01T10:00:00" version="3.34.4-Prizren">
  <title>Town plan</title>
  <projectCrs><spatialrefsys><authid>EPSG:25830</authid></spatialrefsys></projectCrs>
  <projectlayers>
    <maplayer type="vector" geometry="Line" wkbType="MultiLineString">
      <id>roads_1</id>
      <datasource>./data/roads.shp</datasource>
      <layername>roads</layername>
      <srs><spatialrefsys><authid>EPSG:25830</authid></spatialrefsys></srs>
      <provider encoding="UTF-8">ogr</provider>
      <fieldConfiguration>
        <field name="id"/>
        <field name="name"/>
      </fieldConfiguration>
    </maplayer>
    <maplayer type="vector" geometry="Polygon" wkbType="MultiPolygon">
      <id>owners_1</id>
      <datasource>dbname='gis' host=db.local user='editor' password='s3cret' table="public"."owners" (geom)</datasource>
      <layername>owners</layername>
      <provider encoding="">postgres</provider>
    </maplayer>
  </projectlayers>
</qgis>
`

// writeTownProject writes the test project as dir/name and returns its path.
func writeTownProject(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write project: %v", err)
	}
	return path
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// TestNewGenerateCmd tests the generate command flags.
func TestNewGenerateCmd(t *testing.T) {
	t.Parallel()

	cmd := NewGenerateCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"output-dir", "o", "."},
		{"format", "f", "[csv,html]"},
		{"overwrite", "", "false"},
		{"no-redact", "", "false"},
		{"csv-encoding", "", "utf-8"},
		{"csv-delimiter", "", ";"},
		{"batch", "b", "4"},
		{"config", "c", ""},
		{"no-history", "", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// TestBuildConfig tests flag parsing and pinning.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("changed flags are pinned", func(t *testing.T) {
		t.Parallel()
		cmd := NewGenerateCmd()
		if err := cmd.ParseFlags([]string{"-o", "/reports", "-f", "json", "-f", "md", "--no-redact", "--no-history"}); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"town.qgz"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.OutputDir != "/reports" || cfg.Redact || cfg.History {
			t.Errorf("unexpected config %+v", cfg)
		}
		if diff := cmp.Diff([]string{"json", "md"}, cfg.Formats); diff != "" {
			t.Errorf("formats mismatch (-want +got):\n%s", diff)
		}
		for _, s := range []config.Setting{config.SettingOutputDir, config.SettingFormats, config.SettingRedact} {
			if !cfg.Pinned(s) {
				t.Errorf("expected %s to be pinned", s)
			}
		}
		if cfg.Pinned(config.SettingCSVEncoding) {
			t.Error("unchanged flag must not be pinned")
		}
	})

	t.Run("explicit config file is loaded", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("defaults:\n  csvEncoding: windows-1252\n"), 0600); err != nil {
			t.Fatal(err)
		}
		cmd := NewGenerateCmd()
		if err := cmd.ParseFlags([]string{"-c", path}); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"town.qgz"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := cfg.ForProject("town").CSVEncoding; got != "windows-1252" {
			t.Errorf("expected encoding from file, got %q", got)
		}
	})

	t.Run("missing explicit config file fails", func(t *testing.T) {
		t.Parallel()
		cmd := NewGenerateCmd()
		if err := cmd.ParseFlags([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")}); err != nil {
			t.Fatal(err)
		}
		if _, err := buildConfig(cmd, nil); !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

// TestGenerateCommand runs generate end to end.
func TestGenerateCommand(t *testing.T) {
	t.Parallel()

	t.Run("writes report folder and summary", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		project := writeTownProject(t, dir, "Town.qgs", townProject)
		outDir := filepath.Join(dir, "out")

		stdout, _, err := execute(t, "generate", "-o", outDir, "-f", "csv", "-f", "html",
			"--db-dir", filepath.Join(dir, "db"), project)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, name := range []string{"01_project.csv", "02_layers.csv", "03_fields.csv", "04_layouts.csv", "05_relations.csv", "06_joins.csv"} {
			if _, err := os.Stat(filepath.Join(outDir, "Town", "csv", name)); err != nil {
				t.Errorf("missing %s: %v", name, err)
			}
		}
		if _, err := os.Stat(filepath.Join(outDir, "Town", "Town.html")); err != nil {
			t.Errorf("missing HTML report: %v", err)
		}
		for _, want := range []string{"Project: Town", "02_layers.csv", "Report written to", "history entry"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected %q in output:\n%s", want, stdout)
			}
		}
	})

	t.Run("no-redact keeps passwords", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		project := writeTownProject(t, dir, "Town.qgs", townProject)
		outDir := filepath.Join(dir, "out")

		if _, _, err := execute(t, "generate", "-o", outDir, "-f", "csv", "--no-redact", "--no-history", project); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		layers, err := os.ReadFile(filepath.Join(outDir, "Town", "csv", "02_layers.csv"))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(layers), "s3cret") {
			t.Errorf("expected password to be kept:\n%s", layers)
		}
	})

	t.Run("failed project is reported and others are written", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		good := writeTownProject(t, dir, "Town.qgs", townProject)
		bad := writeTownProject(t, dir, "Broken.qgs", "<html></html>")
		outDir := filepath.Join(dir, "out")

		stdout, stderr, err := execute(t, "generate", "-o", outDir, "-f", "json", "--no-history", good, bad)
		if !errors.Is(err, errProjectsFailed) {
			t.Fatalf("expected errProjectsFailed, got %v", err)
		}
		if !strings.Contains(stderr, "Broken.qgs") {
			t.Errorf("expected failed project in stderr: %s", stderr)
		}
		if !strings.Contains(stdout, "1 of 2 projects reported") {
			t.Errorf("expected batch summary: %s", stdout)
		}
		if _, err := os.Stat(filepath.Join(outDir, "Town", "Town.json")); err != nil {
			t.Errorf("expected Town report: %v", err)
		}
	})

	t.Run("invalid options fail before reading projects", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name string
			args []string
			want error
		}{
			{"no targets", []string{"generate", "--no-history"}, config.ErrNoTarget},
			{"unknown format", []string{"generate", "--no-history", "-f", "pdf", "x.qgs"}, report.ErrUnknownFormat},
			{"unknown encoding", []string{"generate", "--no-history", "--csv-encoding", "klingon", "x.qgs"}, report.ErrUnknownEncoding},
			{"bad delimiter", []string{"generate", "--no-history", "--csv-delimiter", ";;", "x.qgs"}, config.ErrInvalidDelimiter},
			{"zero batch", []string{"generate", "--no-history", "-b", "0", "x.qgs"}, config.ErrInvalidBatchSize},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				if _, _, err := execute(t, tt.args...); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}

// TestExpandTargets tests that directories are replaced by their project files.
func TestExpandTargets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.qgz", "a.qgs", "notes.txt", "c.QGS"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.qgs"), 0700); err != nil {
		t.Fatal(err)
	}

	got, err := expandTargets([]string{"missing.qgz", dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		"missing.qgz",
		filepath.Join(dir, "a.qgs"),
		filepath.Join(dir, "b.qgz"),
		filepath.Join(dir, "c.QGS"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}
}

// TestGenerateDirectoryTarget reports on every project of a directory with
// JSON logging.
func TestGenerateDirectoryTarget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	projects := filepath.Join(dir, "projects")
	if err := os.Mkdir(projects, 0700); err != nil {
		t.Fatal(err)
	}
	writeTownProject(t, projects, "Town.qgs", townProject)
	writeTownProject(t, projects, "Village.qgs", strings.ReplaceAll(townProject, "Town", "Village"))
	outDir := filepath.Join(dir, "out")

	stdout, stderr, err := execute(t, "generate", "-v", "--log-json", "-o", outDir, "-f", "html",
		"--raw-headers", "--no-history", projects)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "2 of 2 projects reported") {
		t.Errorf("expected batch summary:\n%s", stdout)
	}
	if !strings.Contains(stderr, `"msg":"starting report generation"`) {
		t.Errorf("expected JSON log records:\n%s", stderr)
	}

	page, err := os.ReadFile(filepath.Join(outDir, "Village", "Village.html"))
	if err != nil {
		t.Fatalf("expected Village report: %v", err)
	}
	if !strings.Contains(string(page), ">path_url</th>") {
		t.Errorf("expected raw column headers:\n%s", page)
	}
}
