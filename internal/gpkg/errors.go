package gpkg

import "errors"

var (
	// ErrTableNotFound is returned when the requested table does not exist.
	ErrTableNotFound = errors.New("gpkg: table not found")

	// ErrNoFeatureTable is returned when a layer names no table and the file
	// has no feature table to fall back to.
	ErrNoFeatureTable = errors.New("gpkg: no feature table")
)
