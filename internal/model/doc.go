// Package model defines the data structures shared across projectreport.
//
// It holds two groups of types:
//   - The project object graph: Project, Layer (VectorLayer, RasterLayer,
//     OtherLayer), Field, Join, Relation and Layout. These mirror what a GIS
//     host application exposes for an open project document.
//   - The tabular report: typed rows (ProjectRow, LayerRow, FieldRow,
//     LayoutRow, RelationRow, JoinRow), the Report that groups them and the
//     Table view the writers consume.
//
// The report types are serializable to JSON for the history database and
// the JSON writer.
package model
