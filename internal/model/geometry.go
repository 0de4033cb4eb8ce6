package model

import "strings"

// GeometryType is the geometry class of a vector layer.
type GeometryType int

// Geometry classes.
const (
	GeometryPoint GeometryType = iota
	GeometryLine
	GeometryPolygon
	GeometryUnknown
	GeometryNull
)

// String returns the display string used in reports.
func (g GeometryType) String() string {
	switch g {
	case GeometryPoint:
		return "Point"
	case GeometryLine:
		return "Line"
	case GeometryPolygon:
		return "Polygon"
	case GeometryNull:
		return "No geometry"
	default:
		return "Unknown geometry"
	}
}

// ParseGeometryType maps a geometry description to a GeometryType. It accepts
// display strings ("Polygon", "No geometry") as well as WKB type names
// ("MultiLineStringZ", "CurvePolygon"), case-insensitively.
func ParseGeometryType(s string) GeometryType {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return GeometryUnknown
	case v == "no geometry" || v == "nogeometry" || v == "none" || v == "null":
		return GeometryNull
	case strings.Contains(v, "polygon") || strings.Contains(v, "surface") ||
		strings.Contains(v, "triangle") || strings.Contains(v, "tin"):
		return GeometryPolygon
	case strings.Contains(v, "line") || strings.Contains(v, "curve"):
		return GeometryLine
	case strings.Contains(v, "point"):
		return GeometryPoint
	default:
		return GeometryUnknown
	}
}
