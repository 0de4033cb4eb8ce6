package report

import "errors"

var (
	// ErrUnknownFormat is returned for an unsupported output format name.
	ErrUnknownFormat = errors.New("unknown report format")

	// ErrUnknownEncoding is returned when a CSV character encoding name
	// cannot be resolved.
	ErrUnknownEncoding = errors.New("unknown character encoding")

	// ErrInvalidDelimiter is returned for a CSV delimiter that encoding/csv
	// cannot use (quote, newline, or invalid rune).
	ErrInvalidDelimiter = errors.New("invalid csv delimiter")

	// ErrNotADirectory is returned when the report path exists as a file.
	ErrNotADirectory = errors.New("report path exists and is not a directory")
)
