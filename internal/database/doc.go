// Package database provides the SQLite-backed report history.
//
// Every generated report is stored with the project name, the project file
// path, a SHA3-256 fingerprint of the file and the full report as JSON, so
// later runs can list past reports and compare two of them. The database is
// a single file (modernc.org/sqlite, no cgo) under the XDG data directory.
package database
