package report

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// csvDirName is the subdirectory holding the CSV files.
const csvDirName = "csv"

// dirPerm is used for every directory the tool creates.
const dirPerm = 0750

// Layout describes where the files of one project report go:
//
//	<BaseDir>/<ProjectName>/               report directory
//	<BaseDir>/<ProjectName>/csv/           one CSV per table
//	<BaseDir>/<ProjectName>/<name>.html    static HTML report
type Layout struct {
	BaseDir     string
	ProjectName string
	ReportDir   string
	CSVDir      string
}

// NewLayout builds the layout for a project inside baseDir.
func NewLayout(baseDir, projectName string) Layout {
	reportDir := filepath.Join(baseDir, projectName)
	return Layout{
		BaseDir:     baseDir,
		ProjectName: projectName,
		ReportDir:   reportDir,
		CSVDir:      filepath.Join(reportDir, csvDirName),
	}
}

// Path returns the path of the single-file output for a format.
// CSV output has no single file; its directory is returned instead.
func (l Layout) Path(f Format) string {
	switch f {
	case FormatCSV:
		return l.CSVDir
	case FormatHTML:
		return filepath.Join(l.ReportDir, l.ProjectName+".html")
	case FormatMarkdown:
		return filepath.Join(l.ReportDir, l.ProjectName+".md")
	case FormatJSON:
		return filepath.Join(l.ReportDir, l.ProjectName+".json")
	default:
		return l.ReportDir
	}
}

// ScaffoldResult tells what Scaffold found and did.
type ScaffoldResult int

// Scaffold outcomes.
const (
	// ScaffoldCreated means the report directory did not exist.
	ScaffoldCreated ScaffoldResult = iota
	// ScaffoldReused means an existing report directory is written into.
	ScaffoldReused
	// ScaffoldReplaced means an existing report directory was removed first.
	ScaffoldReplaced
)

// String returns a short description of the result.
func (r ScaffoldResult) String() string {
	switch r {
	case ScaffoldCreated:
		return "created"
	case ScaffoldReused:
		return "already exists"
	case ScaffoldReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Scaffold creates the report and CSV directories. When the report
// directory already exists and overwrite is set, it is removed first; a
// failed removal is logged and the existing directory is reused.
func Scaffold(l Layout, overwrite bool, logger *slog.Logger) (ScaffoldResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	result := ScaffoldCreated
	info, err := os.Stat(l.ReportDir)
	switch {
	case err == nil && !info.IsDir():
		return result, fmt.Errorf("%w: %s", ErrNotADirectory, l.ReportDir)
	case err == nil:
		result = ScaffoldReused
		if overwrite {
			if rmErr := os.RemoveAll(l.ReportDir); rmErr != nil {
				logger.Warn("could not remove previous report directory",
					"dir", l.ReportDir,
					"error", rmErr,
				)
			} else {
				result = ScaffoldReplaced
			}
		}
	case !errors.Is(err, fs.ErrNotExist):
		return result, fmt.Errorf("stat report directory: %w", err)
	}

	if err := os.MkdirAll(l.CSVDir, dirPerm); err != nil {
		return result, fmt.Errorf("create report directories: %w", err)
	}

	logger.Info("report directory ready", "dir", l.ReportDir, "status", result.String())
	return result, nil
}

// Cleanup removes the report directory after a failed run. It is best
// effort: errors are logged, never returned.
func Cleanup(l Layout, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if l.ReportDir == "" || l.ReportDir == l.BaseDir {
		return
	}
	if err := os.RemoveAll(l.ReportDir); err != nil {
		logger.Warn("cleanup failed", "dir", l.ReportDir, "error", err)
		return
	}
	logger.Debug("report directory removed", "dir", l.ReportDir)
}
