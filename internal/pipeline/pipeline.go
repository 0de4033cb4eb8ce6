package pipeline

import (
	"context"
	"log/slog"

	"github.com/geoinnova/projectreport/internal/config"
	"github.com/geoinnova/projectreport/internal/model"
	"github.com/geoinnova/projectreport/internal/report"
)

// Run is the state of one project moving through the pipeline. Each step
// reads what earlier steps filled in and adds its own result.
type Run struct {
	// Path is the project file given on the command line.
	Path string

	// Config starts as the command-line configuration. The load step
	// replaces it with the per-project configuration once the project
	// name is known.
	Config *config.Config

	// Project is the parsed project, set by the load step.
	Project *model.Project

	// Fingerprint is the SHA3-256 digest of the project file.
	Fingerprint string

	// Enriched counts the layers completed from their GeoPackage files.
	Enriched int

	// Report is the extracted report, set by the extract step.
	Report *model.Report

	// Layout and Scaffold are set by the scaffold step.
	Layout   report.Layout
	Scaffold report.ScaffoldResult

	// Files lists the written output files.
	Files []string

	// HistoryID is the id of the stored history entry, 0 when history is off.
	HistoryID int64

	// Unchanged is set when the project file has the same fingerprint as
	// in the latest recorded run.
	Unchanged bool

	// Performed lists the steps that ran, in order.
	Performed []string

	// Err is the error that stopped the run.
	Err error
}

// NewRun creates the run for one project file.
func NewRun(path string, cfg *config.Config) *Run {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Run{
		Path:   path,
		Config: cfg,
	}
}

// ProjectName returns the report name of the run, known before loading.
func (r *Run) ProjectName() string {
	if r.Report != nil {
		return r.Report.ProjectName
	}
	return model.ProjectName(r.Path)
}

// Step is one stage of a report run.
type Step interface {
	// Do executes the step. A returned error stops the run unless the
	// pipeline continues on error.
	Do(ctx context.Context, run *Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order for one run.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps executing steps after one fails. The first
// error stays recorded in the run.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in sequence. Cancellation is checked before each
// step; a running step handles the context itself.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"project", run.Path,
				"reason", err,
			)
			if run.Err == nil {
				run.Err = err
			}
			return err
		}

		p.logger.Info("executing step", "step", step.Name(), "project", run.Path)

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"project", run.Path,
				"error", err,
			)
			if run.Err == nil {
				run.Err = err
			}
			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed", "step", step.Name(), "project", run.Path)
		}

		run.Performed = append(run.Performed, step.Name())
	}
	return run.Err
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
