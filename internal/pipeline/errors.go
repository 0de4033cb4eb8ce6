package pipeline

import "errors"

var (
	// ErrNotLoaded is returned by steps that need the parsed project when
	// the load step has not run.
	ErrNotLoaded = errors.New("project not loaded")

	// ErrNotExtracted is returned by steps that need the report rows when
	// the extract step has not run.
	ErrNotExtracted = errors.New("report not extracted")

	// ErrNotScaffolded is returned by the write step when the report
	// directories have not been prepared.
	ErrNotScaffolded = errors.New("report directory not prepared")

	// ErrDuplicateReport is set on a batch run whose report directory is
	// already used by an earlier project file of the same batch.
	ErrDuplicateReport = errors.New("report directory used by another project file")
)
