// Package qgis reads QGIS project documents into a model.Project.
//
// Both the plain XML format (.qgs) and the zipped format (.qgz) are
// supported. Only the parts of the document needed for a metadata report
// are decoded: project properties, map layers with their field
// configuration and joins, relations, and layouts.
//
// A project file does not store field types or feature counts. Those are
// filled in afterwards for layers whose data can be inspected locally (see
// package gpkg); everywhere else they stay unknown.
package qgis
