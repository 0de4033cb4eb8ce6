package qgis

import "errors"

var (
	// ErrUnsupportedFormat is returned for files that are neither .qgs nor .qgz.
	ErrUnsupportedFormat = errors.New("qgis: unsupported project format")

	// ErrNoProjectEntry is returned when a .qgz archive holds no .qgs file.
	ErrNoProjectEntry = errors.New("qgis: archive contains no .qgs entry")

	// ErrNotAProject is returned when the XML root element is not <qgis>.
	ErrNotAProject = errors.New("qgis: document is not a QGIS project")
)
