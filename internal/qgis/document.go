package qgis

import "encoding/xml"

// document mirrors the subset of the .qgs XML the reader needs.
type document struct {
	XMLName      xml.Name
	ProjectName  string `xml:"projectname,attr"`
	SaveDateTime string `xml:"saveDateTime,attr"`
	Version      string `xml:"version,attr"`

	Title      string        `xml:"title"`
	HomePath   homePath      `xml:"homePath"`
	ProjectCRS spatialRefSys `xml:"projectCrs>spatialrefsys"`
	Layers     []mapLayer    `xml:"projectlayers>maplayer"`
	Relations  []relation    `xml:"relations>relation"`
	Metadata   metadata      `xml:"projectMetadata"`
	Layouts    layouts       `xml:"Layouts"`
}

type homePath struct {
	Path string `xml:"path,attr"`
}

type spatialRefSys struct {
	AuthID string `xml:"authid"`
}

type metadata struct {
	Title    string `xml:"title"`
	Author   string `xml:"author"`
	Creation string `xml:"creation"`
}

type mapLayer struct {
	Type     string `xml:"type,attr"`
	Geometry string `xml:"geometry,attr"`
	WKBType  string `xml:"wkbType,attr"`

	ID         string        `xml:"id"`
	DataSource string        `xml:"datasource"`
	LayerName  string        `xml:"layername"`
	SRS        spatialRefSys `xml:"srs>spatialrefsys"`
	Provider   provider      `xml:"provider"`

	Fields  []namedField `xml:"fieldConfiguration>field"`
	Aliases []alias      `xml:"aliases>alias"`
	Joins   []vectorJoin `xml:"vectorjoins>join"`
}

type provider struct {
	Encoding string `xml:"encoding,attr"`
	Key      string `xml:",chardata"`
}

type namedField struct {
	Name string `xml:"name,attr"`
}

type alias struct {
	Field string `xml:"field,attr"`
	Name  string `xml:"name,attr"`
}

type vectorJoin struct {
	TargetField     string       `xml:"targetFieldName,attr"`
	JoinLayerID     string       `xml:"joinLayerId,attr"`
	JoinField       string       `xml:"joinFieldName,attr"`
	MemoryCache     string       `xml:"memoryCache,attr"`
	Editable        string       `xml:"editable,attr"`
	UpsertOnEdit    string       `xml:"upsertOnEdit,attr"`
	CascadedDelete  string       `xml:"cascadedDelete,attr"`
	HasCustomPrefix string       `xml:"hasCustomPrefix,attr"`
	CustomPrefix    string       `xml:"customPrefix,attr"`
	Subset          []namedField `xml:"joinFieldsSubset>field"`
}

type relation struct {
	ID               string     `xml:"id,attr"`
	Name             string     `xml:"name,attr"`
	ReferencingLayer string     `xml:"referencingLayer,attr"`
	ReferencedLayer  string     `xml:"referencedLayer,attr"`
	Strength         string     `xml:"strength,attr"`
	FieldRefs        []fieldRef `xml:"fieldRef"`
}

type fieldRef struct {
	Referencing string `xml:"referencingField,attr"`
	Referenced  string `xml:"referencedField,attr"`
}

// layouts keeps <Layout> and <Report> children in document order.
type layouts struct {
	Items []layoutElement `xml:",any"`
}

type layoutElement struct {
	XMLName xml.Name
	Name    string `xml:"name,attr"`
	Atlas   *atlas `xml:"Atlas"`
}

type atlas struct {
	Enabled       string `xml:"enabled,attr"`
	CoverageLayer string `xml:"coverageLayer,attr"`
}
