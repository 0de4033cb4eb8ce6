package model

// Layer is a map layer of a project. Vector layers carry a field schema and
// feature statistics; every other kind only exposes the common properties.
type Layer interface {
	// ID returns the unique layer id within the project.
	ID() string
	// Name returns the layer name shown in the layer tree.
	Name() string
	// CRS returns the authority id of the layer CRS.
	CRS() string
	// Source returns the data source URI exactly as stored by the host.
	Source() string
	// ProviderType returns the data provider key (ogr, gdal, wms, postgres…).
	ProviderType() string
}

// LayerInfo holds the properties common to all layer kinds.
// It is embedded by the concrete layer types.
type LayerInfo struct {
	LayerID     string
	LayerName   string
	LayerCRS    string
	LayerSource string
	Provider    string
}

// ID implements Layer.
func (l LayerInfo) ID() string { return l.LayerID }

// Name implements Layer.
func (l LayerInfo) Name() string { return l.LayerName }

// CRS implements Layer.
func (l LayerInfo) CRS() string { return l.LayerCRS }

// Source implements Layer.
func (l LayerInfo) Source() string { return l.LayerSource }

// ProviderType implements Layer.
func (l LayerInfo) ProviderType() string { return l.Provider }

// UnknownFeatureCount marks a vector layer whose feature count could not be
// determined.
const UnknownFeatureCount int64 = -1

// VectorLayer is a layer backed by a vector data provider.
type VectorLayer struct {
	LayerInfo

	// StorageType is the provider storage description
	// (e.g. "ESRI Shapefile", "GPKG").
	StorageType string

	// Encoding is the attribute character encoding reported by the provider.
	Encoding string

	// Geometry is the geometry class of the layer.
	Geometry GeometryType

	// FeatureCount is the number of features, or UnknownFeatureCount.
	FeatureCount int64

	// Fields is the attribute schema in provider order.
	Fields []Field

	// Joins lists the table joins configured on this layer.
	Joins []Join
}

// RasterLayer is a layer backed by a raster provider (gdal, wms, wcs…).
type RasterLayer struct {
	LayerInfo
}

// OtherLayer covers mesh, vector tile, point cloud and plugin layers.
// They are reported like raster layers.
type OtherLayer struct {
	LayerInfo

	// Kind is the layer type as stored by the host (e.g. "mesh").
	Kind string
}

var (
	_ Layer = (*VectorLayer)(nil)
	_ Layer = (*RasterLayer)(nil)
	_ Layer = (*OtherLayer)(nil)
)
