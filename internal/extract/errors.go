package extract

import "errors"

// ErrNilProject is returned when Extract is called without a project.
var ErrNilProject = errors.New("extract: project is nil")
