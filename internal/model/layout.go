package model

import "strconv"

// LayoutType distinguishes print layouts from reports.
type LayoutType int

// Layout types, numbered as the host application does.
const (
	LayoutPrint  LayoutType = 0
	LayoutReport LayoutType = 1
)

// String returns "PrintLayout" or "Report".
func (t LayoutType) String() string {
	switch t {
	case LayoutPrint:
		return "PrintLayout"
	case LayoutReport:
		return "Report"
	default:
		return "LayoutType(" + strconv.Itoa(int(t)) + ")"
	}
}

// Atlas is the atlas configuration of a print layout.
type Atlas struct {
	Enabled bool

	// CoverageLayerID is the id of the layer the atlas iterates over.
	// Empty when no coverage layer is set.
	CoverageLayerID string
}

// Layout is a print layout or report of a project.
type Layout struct {
	Name string
	Type LayoutType

	// Atlas is nil for reports and for layouts saved without atlas settings.
	Atlas *Atlas
}
