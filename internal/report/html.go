package report

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/geoinnova/projectreport/internal/model"
)

// stylesheet is embedded in every HTML report so the file is self-contained.
const stylesheet = `
body { font-family: "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem; color: #222; }
h1 { border-bottom: 2px solid #589632; padding-bottom: .3rem; }
h2 { margin-top: 2.5rem; color: #3a6b1f; }
nav ul { list-style: none; padding: 0; display: flex; gap: 1rem; flex-wrap: wrap; }
p.meta, p.count { color: #666; font-size: .9rem; }
table { border-collapse: collapse; width: 100%; font-size: .9rem; }
th, td { border: 1px solid #ccc; padding: .35rem .6rem; text-align: left; vertical-align: top; }
th { background: #eef5e9; }
tbody tr:nth-child(even) { background: #fafafa; }
td.empty { text-align: center; color: #888; font-style: italic; }
footer { margin-top: 3rem; font-size: .8rem; color: #888; }
`

// HTMLWriter outputs a report as a single static HTML page.
// The page is built as an html.Node tree and rendered, so every value is
// escaped by the renderer.
type HTMLWriter struct {
	baseWriter

	// title overrides the page heading. Defaults to the project name.
	title string

	// rawHeaders keeps column names as-is instead of humanizing them.
	rawHeaders bool
}

// HTMLWriterOption configures an HTMLWriter.
type HTMLWriterOption func(*HTMLWriter)

// WithTitle sets the page title and main heading.
func WithTitle(title string) HTMLWriterOption {
	return func(w *HTMLWriter) {
		w.title = title
	}
}

// WithRawHeaders prints column names exactly as in the CSV files.
func WithRawHeaders(raw bool) HTMLWriterOption {
	return func(w *HTMLWriter) {
		w.rawHeaders = raw
	}
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer, opts ...HTMLWriterOption) *HTMLWriter {
	w := &HTMLWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the report.
func (w *HTMLWriter) Write(report *model.Report) (int, error) {
	cw := &countingWriter{w: w.output}
	err := html.Render(cw, w.document(report))
	return cw.n, err
}

func (w *HTMLWriter) document(report *model.Report) *html.Node {
	title := w.title
	if title == "" {
		title = report.ProjectName + " project report"
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, attr("lang", "en"))
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	head.AppendChild(element(atom.Meta, attr("name", "generator"), attr("content", "projectreport")))
	head.AppendChild(withText(element(atom.Title), title))
	head.AppendChild(withText(element(atom.Style), stylesheet))
	root.AppendChild(head)

	body := element(atom.Body)
	root.AppendChild(body)

	body.AppendChild(withText(element(atom.H1), title))
	body.AppendChild(withText(element(atom.P, attr("class", "meta")),
		"Generated "+report.GeneratedAt.Format("2006-01-02 15:04:05 MST")+" from "+sourceLabel(report)))

	tables := report.Tables()
	body.AppendChild(navigation(tables))
	for _, table := range tables {
		body.AppendChild(w.section(table))
	}

	footer := element(atom.Footer)
	footer.AppendChild(text("Report generated by projectreport"))
	body.AppendChild(footer)

	return doc
}

func sourceLabel(report *model.Report) string {
	if report.SourcePath != "" {
		return report.SourcePath
	}
	return report.ProjectName
}

func navigation(tables []*model.Table) *html.Node {
	nav := element(atom.Nav)
	list := element(atom.Ul)
	for _, table := range tables {
		item := element(atom.Li)
		link := element(atom.A, attr("href", "#"+table.Name))
		link.AppendChild(text(sectionTitle(table) + " (" + strconv.Itoa(table.Len()) + ")"))
		item.AppendChild(link)
		list.AppendChild(item)
	}
	nav.AppendChild(list)
	return nav
}

func (w *HTMLWriter) section(table *model.Table) *html.Node {
	section := element(atom.Section, attr("id", table.Name))
	section.AppendChild(withText(element(atom.H2), sectionTitle(table)))
	section.AppendChild(withText(element(atom.P, attr("class", "count")), rowCountLabel(table.Len())))
	section.AppendChild(w.table(table))
	return section
}

// table turns arbitrary row data into a <table>. Rows shorter than the
// header are padded; longer rows are rendered in full.
func (w *HTMLWriter) table(table *model.Table) *html.Node {
	tbl := element(atom.Table)

	thead := element(atom.Thead)
	headRow := element(atom.Tr)
	for _, col := range table.Columns {
		label := col
		if !w.rawHeaders {
			label = HumanizeColumn(col)
		}
		headRow.AppendChild(withText(element(atom.Th, attr("scope", "col"), attr("title", col)), label))
	}
	thead.AppendChild(headRow)
	tbl.AppendChild(thead)

	tbody := element(atom.Tbody)
	if table.Empty() {
		tr := element(atom.Tr)
		span := len(table.Columns)
		if span < 1 {
			span = 1
		}
		tr.AppendChild(withText(element(atom.Td, attr("class", "empty"), attr("colspan", strconv.Itoa(span))), "No records"))
		tbody.AppendChild(tr)
	}
	for _, row := range table.Rows {
		tr := element(atom.Tr)
		for i := 0; i < len(row) || i < len(table.Columns); i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			tr.AppendChild(withText(element(atom.Td), cell))
		}
		tbody.AppendChild(tr)
	}
	tbl.AppendChild(tbody)
	return tbl
}

func rowCountLabel(n int) string {
	if n == 1 {
		return "1 record"
	}
	return strconv.Itoa(n) + " records"
}

// titleCase title-cases s. A Caser keeps state, so one is created per call
// to stay safe when reports are rendered concurrently.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// acronyms stay upper case after title casing.
var acronyms = map[string]string{
	"Crs": "CRS",
	"Url": "URL",
	"Id":  "ID",
}

// HumanizeColumn turns a column name into a heading label:
// "atlas_coverageLayer_name" becomes "Atlas Coverage Layer Name" and
// "path_url" becomes "Path URL".
func HumanizeColumn(name string) string {
	var sb strings.Builder
	prev := rune(0)
	for _, r := range name {
		switch {
		case r == '_' || r == '-':
			sb.WriteRune(' ')
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			sb.WriteRune(' ')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
		prev = r
	}
	words := strings.Fields(titleCase(sb.String()))
	for i, word := range words {
		if a, ok := acronyms[word]; ok {
			words[i] = a
		}
	}
	return strings.Join(words, " ")
}

func sectionTitle(table *model.Table) string {
	if table.Title != "" {
		return table.Title
	}
	return titleCase(table.Name)
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(text(s))
	return n
}
