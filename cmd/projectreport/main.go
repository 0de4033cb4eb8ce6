// Package main provides the entry point for the projectreport CLI.
//
// projectreport reads QGIS project files (.qgs, .qgz) and writes an
// inventory of their layers, fields, print layouts, relations and joins as
// CSV, HTML, Markdown or JSON.
//
// Usage:
//
//	projectreport generate <project.qgz>
//	projectreport history <project>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
