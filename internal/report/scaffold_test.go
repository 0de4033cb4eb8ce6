package report

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewLayout(t *testing.T) {
	t.Parallel()

	l := NewLayout("/out", "town")
	want := Layout{
		BaseDir:     "/out",
		ProjectName: "town",
		ReportDir:   filepath.Join("/out", "town"),
		CSVDir:      filepath.Join("/out", "town", "csv"),
	}
	if diff := cmp.Diff(want, l); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	if got := l.Path(FormatHTML); got != filepath.Join("/out", "town", "town.html") {
		t.Errorf("unexpected html path %q", got)
	}
	if got := l.Path(FormatCSV); got != l.CSVDir {
		t.Errorf("unexpected csv path %q", got)
	}
}

func TestScaffold(t *testing.T) {
	t.Parallel()

	t.Run("creates directories", func(t *testing.T) {
		t.Parallel()
		l := NewLayout(t.TempDir(), "town")
		result, err := Scaffold(l, false, discardLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != ScaffoldCreated {
			t.Errorf("expected created, got %s", result)
		}
		if info, err := os.Stat(l.CSVDir); err != nil || !info.IsDir() {
			t.Errorf("expected csv directory, got %v", err)
		}
	})

	t.Run("reuses existing directory", func(t *testing.T) {
		t.Parallel()
		l := NewLayout(t.TempDir(), "town")
		keep := filepath.Join(l.ReportDir, "notes.txt")
		if err := os.MkdirAll(l.ReportDir, 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(keep, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		result, err := Scaffold(l, false, discardLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != ScaffoldReused || result.String() != "already exists" {
			t.Errorf("expected reused, got %s", result)
		}
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("existing files must be kept: %v", err)
		}
	})

	t.Run("overwrite replaces directory", func(t *testing.T) {
		t.Parallel()
		l := NewLayout(t.TempDir(), "town")
		stale := filepath.Join(l.ReportDir, "stale.txt")
		if err := os.MkdirAll(l.ReportDir, 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(stale, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		result, err := Scaffold(l, true, discardLogger())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != ScaffoldReplaced {
			t.Errorf("expected replaced, got %s", result)
		}
		if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected stale file to be removed, got %v", err)
		}
		if _, err := os.Stat(l.CSVDir); err != nil {
			t.Errorf("expected csv directory: %v", err)
		}
	})

	t.Run("file in the way", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()
		if err := os.WriteFile(filepath.Join(base, "town"), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := Scaffold(NewLayout(base, "town"), true, discardLogger())
		if !errors.Is(err, ErrNotADirectory) {
			t.Errorf("expected ErrNotADirectory, got %v", err)
		}
	})
}

func TestCleanup(t *testing.T) {
	t.Parallel()

	l := NewLayout(t.TempDir(), "town")
	if _, err := Scaffold(l, false, discardLogger()); err != nil {
		t.Fatal(err)
	}
	Cleanup(l, discardLogger())
	if _, err := os.Stat(l.ReportDir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected report directory to be removed, got %v", err)
	}
	if _, err := os.Stat(l.BaseDir); err != nil {
		t.Errorf("base directory must survive: %v", err)
	}

	// Missing directories are not an error.
	Cleanup(l, discardLogger())
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	l := NewLayout(t.TempDir(), "town")
	if _, err := Scaffold(l, false, discardLogger()); err != nil {
		t.Fatal(err)
	}

	formats := []Format{FormatCSV, FormatHTML, FormatMarkdown, FormatJSON}
	paths, err := WriteFiles(l, createTestReport(), formats, FileOptions{PrettyJSON: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		filepath.Join(l.CSVDir, "01_project.csv"),
		filepath.Join(l.CSVDir, "02_layers.csv"),
		filepath.Join(l.CSVDir, "03_fields.csv"),
		filepath.Join(l.CSVDir, "04_layouts.csv"),
		filepath.Join(l.CSVDir, "05_relations.csv"),
		filepath.Join(l.CSVDir, "06_joins.csv"),
		filepath.Join(l.ReportDir, "town.html"),
		filepath.Join(l.ReportDir, "town.md"),
		filepath.Join(l.ReportDir, "town.json"),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			t.Errorf("missing %s: %v", p, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", p)
		}
	}

	data, err := os.ReadFile(filepath.Join(l.CSVDir, "04_layouts.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != "layout_name;layout_type;atlas;atlas_coverageLayer_name" {
		t.Errorf("expected header only, got %q", got)
	}
}

func TestWriteFilesStopsAtFailingFormat(t *testing.T) {
	t.Parallel()

	l := NewLayout(t.TempDir(), "town")
	if _, err := Scaffold(l, false, discardLogger()); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(l.CSVDir); err != nil {
		t.Fatal(err)
	}

	paths, err := WriteFiles(l, createTestReport(), []Format{FormatHTML, FormatCSV, FormatJSON}, FileOptions{})
	if err == nil {
		t.Fatal("expected error for the missing csv directory")
	}
	if !strings.Contains(err.Error(), l.ReportDir) {
		t.Errorf("expected report directory in error: %v", err)
	}

	html := filepath.Join(l.ReportDir, "town.html")
	if len(paths) == 0 || paths[0] != html {
		t.Errorf("expected %s first, got %v", html, paths)
	}
	if info, err := os.Stat(filepath.Join(l.ReportDir, "town.json")); err == nil && info.Size() != 0 {
		t.Error("formats after the failing one must not be written")
	}
}
