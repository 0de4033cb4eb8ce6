package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/geoinnova/projectreport/internal/config"
	"github.com/geoinnova/projectreport/internal/report"
)

// BatchProcessor runs the pipeline for several project files concurrently.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each project.
	pipelineFactory func() *Pipeline

	// cfg is the command-line configuration every run starts from.
	cfg *config.Config

	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of projects processed at once.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor. Concurrency defaults to
// config.DefaultBatchSize.
func NewBatchProcessor(cfg *config.Config, pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		cfg:             cfg,
		concurrency:     config.DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs every project file and returns one run per path, in
// the order of paths. A failed project does not stop the others; its error
// is kept in its run. The returned error is only set when the batch was
// cancelled. Project files that would write the same report directory are
// not run after the first one; they fail with ErrDuplicateReport.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, paths []string) ([]*Run, error) {
	bp.logger.Info("starting batch processing",
		"total_projects", len(paths),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	runs := make([]*Run, len(paths))
	for i, path := range paths {
		runs[i] = NewRun(path, bp.cfg)
	}
	markDuplicateReports(runs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, run := range runs {
		if run.Err != nil {
			bp.logger.Warn("project skipped", "project", run.Path, "error", run.Err)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				run.Err = err
				return err
			}

			bp.logger.Info("processing project",
				"project", run.Path,
				"index", i+1,
				"total", len(runs),
			)

			if err := bp.pipelineFactory().Execute(gctx, run); err != nil {
				bp.logger.Warn("project failed", "project", run.Path, "error", err)
				return nil
			}
			bp.logger.Info("project completed", "project", run.Path)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	bp.logger.Info("batch processing complete",
		"total_projects", len(paths),
		"elapsed", time.Since(startTime),
	)
	return runs, err
}

// markDuplicateReports fails every run whose report directory is already
// claimed by an earlier run.
func markDuplicateReports(runs []*Run) {
	claimed := make(map[string]string, len(runs))
	for _, run := range runs {
		name := run.ProjectName()
		cfg := run.Config.ForProject(name)
		dir := filepath.Clean(report.NewLayout(cfg.OutputDir, name).ReportDir)
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		if first, ok := claimed[dir]; ok {
			run.Err = fmt.Errorf("%w: %s and %s both report to %s", ErrDuplicateReport, first, run.Path, dir)
			continue
		}
		claimed[dir] = run.Path
	}
}
