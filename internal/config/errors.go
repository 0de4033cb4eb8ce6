package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() while still printing a readable message.
var (
	// ErrNoTarget is returned when no project file is specified.
	ErrNoTarget = errors.New("no target specified: provide one or more .qgs or .qgz project files")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrNoFormat is returned when every output format was disabled.
	ErrNoFormat = errors.New("no output format: specify at least one of csv, html, markdown, json")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrInvalidDelimiter is returned when the CSV delimiter is not a single
	// character or is a quote or line break.
	ErrInvalidDelimiter = errors.New("invalid csv delimiter: must be a single character other than a quote or line break")

	// ErrNoDatabaseDir is returned when history is enabled without a
	// database directory.
	ErrNoDatabaseDir = errors.New("history enabled but no database directory set")
)
