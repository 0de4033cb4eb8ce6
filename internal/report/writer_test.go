package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/geoinnova/projectreport/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.Report {
	r := model.NewReport("town")
	r.SourcePath = "/gis/town.qgz"
	r.GeneratedAt = time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	r.Project = model.ProjectRow{
		Title:      "Town; centre",
		FileName:   "/gis/town.qgz",
		HomePath:   "/gis",
		CRS:        "EPSG:25830",
		LayerCount: 2,
	}
	r.Layers = []model.LayerRow{
		{Name: "roads", CRS: "EPSG:25830", PathURL: "./roads.shp", Storage: "ESRI Shapefile", Encoding: "UTF-8",
			GeometryType: "Line", FeatureCount: 42, Vector: true},
		{Name: `<b>ortho</b> "2023"`, CRS: "EPSG:3857", PathURL: "https://example.com/wms", Storage: "wms"},
	}
	r.Fields = []model.FieldRow{
		{Layer: "roads", Name: "name", DisplayName: "Name", Alias: "Name", TypeName: "String", Type: model.VariantString, Length: 80},
	}
	return r
}

func TestWriteTableCSV(t *testing.T) {
	t.Parallel()

	t.Run("semicolon delimited with header", func(t *testing.T) {
		t.Parallel()
		tbl, _ := createTestReport().Table(model.TableLayers)
		var buf bytes.Buffer
		if err := WriteTableCSV(&buf, tbl, CSVOptions{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
		}
		if lines[0] != "name;crs;path_url;storage;encoding;geometry_type;features_count" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if lines[1] != "roads;EPSG:25830;./roads.shp;ESRI Shapefile;UTF-8;Line;42" {
			t.Errorf("unexpected row %q", lines[1])
		}
	})

	t.Run("quotes only when needed", func(t *testing.T) {
		t.Parallel()
		tbl, _ := createTestReport().Table(model.TableProject)
		var buf bytes.Buffer
		if err := WriteTableCSV(&buf, tbl, CSVOptions{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"Town; centre";/gis/town.qgz`) {
			t.Errorf("expected quoted title, got %q", buf.String())
		}

		r := csv.NewReader(&buf)
		r.Comma = ';'
		records, err := r.ReadAll()
		if err != nil {
			t.Fatalf("output is not valid csv: %v", err)
		}
		if diff := cmp.Diff(tbl.Rows[0], records[1]); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty table still has header", func(t *testing.T) {
		t.Parallel()
		tbl, _ := createTestReport().Table(model.TableRelations)
		var buf bytes.Buffer
		if err := WriteTableCSV(&buf, tbl, CSVOptions{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := strings.Join(model.RelationColumns, ";") + "\r\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("custom delimiter", func(t *testing.T) {
		t.Parallel()
		tbl := &model.Table{Name: "t", Columns: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}}
		var buf bytes.Buffer
		if err := WriteTableCSV(&buf, tbl, CSVOptions{Delimiter: '\t'}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "a\tb\r\n1\t2\r\n" {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("windows-1252 encoding", func(t *testing.T) {
		t.Parallel()
		tbl := &model.Table{Name: "t", Columns: []string{"nombre"}, Rows: [][]string{{"Cádiz"}, {"日本"}}}
		var buf bytes.Buffer
		if err := WriteTableCSV(&buf, tbl, CSVOptions{Encoding: "windows-1252"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := buf.Bytes()
		if !bytes.Contains(got, []byte{'C', 0xE1, 'd', 'i', 'z'}) {
			t.Errorf("expected latin-1 encoded á, got %q", got)
		}
		if bytes.Contains(got, []byte("日本")) {
			t.Errorf("unrepresentable characters must be replaced, got %q", got)
		}
	})

	t.Run("utf-8 label means no transform", func(t *testing.T) {
		t.Parallel()
		tbl := &model.Table{Name: "t", Columns: []string{"n"}, Rows: [][]string{{"Cádiz"}}}
		var buf bytes.Buffer
		if err := WriteTableCSV(&buf, tbl, CSVOptions{Encoding: "UTF8"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "n\r\nCádiz\r\n" {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("lines end with crlf by default", func(t *testing.T) {
		t.Parallel()
		tbl := &model.Table{Name: "t", Columns: []string{"a", "b"}, Rows: [][]string{{"1", "x\ny"}}}
		var buf bytes.Buffer
		if err := WriteTableCSV(&buf, tbl, CSVOptions{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "a;b\r\n1;\"x\r\ny\"\r\n" {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("unknown encoding", func(t *testing.T) {
		t.Parallel()
		err := WriteTableCSV(&bytes.Buffer{}, &model.Table{}, CSVOptions{Encoding: "klingon"})
		if !errors.Is(err, ErrUnknownEncoding) {
			t.Errorf("expected ErrUnknownEncoding, got %v", err)
		}
	})

	t.Run("invalid delimiter", func(t *testing.T) {
		t.Parallel()
		err := ValidateCSVOptions(CSVOptions{Delimiter: '"'})
		if !errors.Is(err, ErrInvalidDelimiter) {
			t.Errorf("expected ErrInvalidDelimiter, got %v", err)
		}
	})
}

func TestHTMLWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewHTMLWriter(&buf).Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("reported %d bytes, buffer has %d", n, buf.Len())
	}
	output := buf.String()

	t.Run("is a complete document", func(t *testing.T) {
		t.Parallel()
		if !strings.HasPrefix(output, "<!DOCTYPE html>") {
			t.Errorf("expected doctype, got %q", output[:30])
		}
		if !strings.Contains(output, "<title>town project report</title>") {
			t.Error("expected default title")
		}
	})

	t.Run("escapes cell values", func(t *testing.T) {
		t.Parallel()
		if strings.Contains(output, "<b>ortho</b>") {
			t.Error("cell markup must be escaped")
		}
		if !strings.Contains(output, "&lt;b&gt;ortho&lt;/b&gt;") {
			t.Error("expected escaped layer name")
		}
	})

	t.Run("has one table per section with matching cells", func(t *testing.T) {
		t.Parallel()
		doc, err := html.Parse(strings.NewReader(output))
		if err != nil {
			t.Fatalf("output does not parse: %v", err)
		}
		tables := findAll(doc, "table")
		if len(tables) != 6 {
			t.Fatalf("expected 6 tables, got %d", len(tables))
		}
		layerRows := findAll(findAll(tables[1], "tbody")[0], "tr")
		if len(layerRows) != 2 {
			t.Fatalf("expected 2 layer rows, got %d", len(layerRows))
		}
		cells := findAll(layerRows[1], "td")
		if got := textOf(cells[0]); got != `<b>ortho</b> "2023"` {
			t.Errorf("unexpected first cell %q", got)
		}
		headers := findAll(tables[1], "th")
		if got := textOf(headers[2]); got != "Path URL" {
			t.Errorf("unexpected header %q", got)
		}
	})

	t.Run("empty tables show placeholder", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(output, `<td class="empty" colspan="4">No records</td>`) {
			t.Error("expected placeholder for the empty layouts table")
		}
	})

	t.Run("raw headers and custom title", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		w := NewHTMLWriter(&buf, WithTitle("Inventory"), WithRawHeaders(true))
		if _, err := w.Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "<h1>Inventory</h1>") {
			t.Error("expected custom heading")
		}
		if !strings.Contains(buf.String(), ">path_url</th>") {
			t.Error("expected raw column names")
		}
	})
}

func TestHumanizeColumn(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"atlas_coverageLayer_name": "Atlas Coverage Layer Name",
		"path_url":                 "Path URL",
		"fileName":                 "File Name",
		"crs":                      "CRS",
		"relation_id":              "Relation ID",
		"layers_count":             "Layers Count",
	}
	for in, want := range tests {
		if got := HumanizeColumn(in); got != want {
			t.Errorf("HumanizeColumn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "# town project report") {
		t.Error("expected heading")
	}
	if !strings.Contains(output, "## Layers") {
		t.Error("expected layers section")
	}
	if !strings.Contains(output, "ESRI Shapefile") {
		t.Error("expected layer cells")
	}
	if !strings.Contains(output, "No records.") {
		t.Error("expected empty-section note")
	}
}

func TestEscapeMarkdownCell(t *testing.T) {
	t.Parallel()

	if got := escapeMarkdownCell("a|b\nc"); got != `a\|b<br>c` {
		t.Errorf("got %q", got)
	}
	if got := escapeMarkdownCell(""); got != "-" {
		t.Errorf("got %q", got)
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var parsed model.Report
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if parsed.ProjectName != "town" || len(parsed.Layers) != 2 {
			t.Errorf("unexpected report %+v", parsed)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 1 {
			t.Errorf("expected compact output, got %d lines", len(lines))
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if lines := strings.Count(buf.String(), "\n"); lines < 10 {
			t.Errorf("expected multi-line output, got %d lines", lines)
		}
	})
}

func TestSummaryWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewSummaryWriter(&buf).Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output := buf.String()
	for _, want := range []string{"Project: town", "02_layers.csv", "Fields"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in summary:\n%s", want, output)
		}
	}
}

// failingWriter always fails.
type failingWriter struct{}

func (failingWriter) Write(*model.Report) (int, error) {
	return 0, errors.New("boom")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes with all writers", func(t *testing.T) {
		t.Parallel()
		var summary, doc bytes.Buffer
		multi := NewMultiWriter(NewSummaryWriter(&summary), NewJSONWriter(&doc))
		total, err := multi.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Len() == 0 || doc.Len() == 0 {
			t.Error("expected output from both writers")
		}
		if total != summary.Len()+doc.Len() {
			t.Errorf("total %d, want %d", total, summary.Len()+doc.Len())
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()
		var doc bytes.Buffer
		multi := NewMultiWriter(failingWriter{}, NewJSONWriter(&doc))
		if _, err := multi.Write(createTestReport()); err == nil {
			t.Fatal("expected error")
		}
		if doc.Len() != 0 {
			t.Error("later writers must not run")
		}
	})
}

func TestParseFormats(t *testing.T) {
	t.Parallel()

	got, err := ParseFormats([]string{"CSV", "md", "html", "csv"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Format{FormatCSV, FormatMarkdown, FormatHTML}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("formats mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseFormats([]string{"pdf"}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
