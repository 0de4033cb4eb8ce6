// Package gpkg reads layer schemas and statistics from GeoPackage files.
//
// Project documents do not store field types or feature counts. For vector
// layers stored in a local GeoPackage the file itself is opened read-only
// and queried for the column definitions, the number of rows and the
// declared geometry type.
package gpkg
