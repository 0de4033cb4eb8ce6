// Package extract flattens a project object graph into the typed row
// collections of a model.Report.
//
// Extraction is a single pass over the project: project properties, one row
// per layer, one row per field of every vector layer, then layouts,
// relations and joins. Layer ids referenced by layouts, relations and joins
// are resolved to layer names.
package extract
