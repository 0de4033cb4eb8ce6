package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geoinnova/projectreport/internal/config"
	"github.com/geoinnova/projectreport/internal/database"
	"github.com/geoinnova/projectreport/internal/extract"
	"github.com/geoinnova/projectreport/internal/gpkg"
	"github.com/geoinnova/projectreport/internal/qgis"
	"github.com/geoinnova/projectreport/internal/report"
)

// Step names.
const (
	StepLoad     = "load"
	StepExtract  = "extract"
	StepScaffold = "scaffold"
	StepWrite    = "write"
	StepRecord   = "record"
)

// LoadStep parses the project file, completes GeoPackage layers from their
// files and fingerprints the project.
type LoadStep struct {
	logger *slog.Logger
}

// NewLoadStep creates the load step.
func NewLoadStep(logger *slog.Logger) *LoadStep {
	return &LoadStep{logger: orDefault(logger)}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return StepLoad
}

// Do executes the load step.
func (s *LoadStep) Do(ctx context.Context, run *Run) error {
	project, err := qgis.Open(run.Path)
	if err != nil {
		return err
	}
	run.Project = project
	run.Config = run.Config.ForProject(project.Name())
	if err := validateProjectConfig(run.Config); err != nil {
		return fmt.Errorf("configuration of %s: %w", project.Name(), err)
	}

	run.Enriched = gpkg.Enrich(ctx, project, s.logger)

	fingerprint, err := database.Fingerprint(run.Path)
	if err != nil {
		s.logger.Warn("could not fingerprint project file", "project", run.Path, "error", err)
	}
	run.Fingerprint = fingerprint

	s.logger.Debug("project loaded",
		"project", project.Name(),
		"layers", len(project.Layers),
		"enriched", run.Enriched,
	)
	return nil
}

// ExtractStep builds the report rows from the loaded project.
type ExtractStep struct {
	logger *slog.Logger
}

// NewExtractStep creates the extract step.
func NewExtractStep(logger *slog.Logger) *ExtractStep {
	return &ExtractStep{logger: orDefault(logger)}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return StepExtract
}

// Do executes the extract step.
func (s *ExtractStep) Do(_ context.Context, run *Run) error {
	if run.Project == nil {
		return ErrNotLoaded
	}
	r, err := extract.Extract(run.Project, extract.Options{
		RedactCredentials: run.Config.Redact,
		Logger:            s.logger,
	})
	if err != nil {
		return fmt.Errorf("extract %s: %w", run.Path, err)
	}
	r.Fingerprint = run.Fingerprint
	run.Report = r
	return nil
}

// ScaffoldStep prepares the report directories.
type ScaffoldStep struct {
	logger *slog.Logger
}

// NewScaffoldStep creates the scaffold step.
func NewScaffoldStep(logger *slog.Logger) *ScaffoldStep {
	return &ScaffoldStep{logger: orDefault(logger)}
}

// Name returns the step name.
func (s *ScaffoldStep) Name() string {
	return StepScaffold
}

// Do executes the scaffold step.
func (s *ScaffoldStep) Do(_ context.Context, run *Run) error {
	layout := report.NewLayout(run.Config.OutputDir, run.ProjectName())
	result, err := report.Scaffold(layout, run.Config.Overwrite, s.logger)
	if err != nil {
		return err
	}
	run.Layout = layout
	run.Scaffold = result
	return nil
}

// WriteStep writes the report files. When writing fails the report
// directory is removed again, unless it held an earlier report.
type WriteStep struct {
	logger *slog.Logger
}

// NewWriteStep creates the write step.
func NewWriteStep(logger *slog.Logger) *WriteStep {
	return &WriteStep{logger: orDefault(logger)}
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return StepWrite
}

// Do executes the write step.
func (s *WriteStep) Do(_ context.Context, run *Run) error {
	if run.Report == nil {
		return ErrNotExtracted
	}
	if run.Layout.ReportDir == "" {
		return ErrNotScaffolded
	}

	files, err := writeReport(run)
	if err != nil {
		if run.Scaffold != report.ScaffoldReused {
			report.Cleanup(run.Layout, s.logger)
			files = nil
		}
		run.Files = files
		return err
	}
	run.Files = files

	s.logger.Debug("report written", "project", run.ProjectName(), "files", len(files))
	return nil
}

func writeReport(run *Run) ([]string, error) {
	cfg := run.Config
	formats, err := report.ParseFormats(cfg.Formats)
	if err != nil {
		return nil, err
	}
	return report.WriteFiles(run.Layout, run.Report, formats, report.FileOptions{
		CSV: report.CSVOptions{
			Delimiter: cfg.Delimiter(),
			Encoding:  cfg.CSVEncoding,
		},
		HTMLTitle:      cfg.HTMLTitle,
		PrettyJSON:     cfg.PrettyJSON,
		HTMLRawHeaders: cfg.RawHeaders,
	})
}

// RecordStep stores the report in the history database.
type RecordStep struct {
	db     *database.HistoryDB
	logger *slog.Logger
}

// NewRecordStep creates the record step. A nil database makes it a no-op.
func NewRecordStep(db *database.HistoryDB, logger *slog.Logger) *RecordStep {
	return &RecordStep{db: db, logger: orDefault(logger)}
}

// Name returns the step name.
func (s *RecordStep) Name() string {
	return StepRecord
}

// Do executes the record step. A failure to record does not fail the run:
// the report files are already written.
func (s *RecordStep) Do(ctx context.Context, run *Run) error {
	if s.db == nil {
		return nil
	}
	if run.Report == nil {
		return ErrNotExtracted
	}

	previous, err := s.db.GetLatest(ctx, run.Report.ProjectName)
	if errors.Is(err, context.Canceled) {
		return err
	}
	if err == nil && previous != nil && previous.Fingerprint != "" && previous.Fingerprint == run.Report.Fingerprint {
		run.Unchanged = true
		s.logger.Info("project file unchanged since the last run", "project", run.ProjectName())
	}

	id, err := s.db.SaveReport(ctx, run.Report)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		s.logger.Warn("could not record report history", "project", run.ProjectName(), "error", err)
		return nil
	}
	run.HistoryID = id
	return nil
}

// DefaultPipeline creates the pipeline used by the generate command:
// load, extract, scaffold, write and, when db is not nil, record.
func DefaultPipeline(logger *slog.Logger, db *database.HistoryDB) *Pipeline {
	logger = orDefault(logger)
	p := New(WithLogger(logger))
	p.AddSteps(
		NewLoadStep(logger),
		NewExtractStep(logger),
		NewScaffoldStep(logger),
		NewWriteStep(logger),
	)
	if db != nil {
		p.AddStep(NewRecordStep(db, logger))
	}
	return p
}

// validateProjectConfig checks the configuration after the per-project
// settings are applied, before any file is written.
func validateProjectConfig(cfg *config.Config) error {
	if err := cfg.ValidateProject(); err != nil {
		return err
	}
	if _, err := report.ParseFormats(cfg.Formats); err != nil {
		return err
	}
	return report.ValidateCSVOptions(report.CSVOptions{
		Delimiter: cfg.Delimiter(),
		Encoding:  cfg.CSVEncoding,
	})
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
