package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/bizreport/internal/document"
	"github.com/nao1215/bizreport/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence; each reads the document and fills one
// section of the report.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state (limits, field names)
// 2. It provides a Name() method for logging and debugging
type Step interface {
	// Do executes the pipeline step.
	// A returned error is a fault: the pipeline stops and the sections
	// filled so far remain in the report.
	Do(ctx context.Context, doc *document.Document, report *model.Report) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
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
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// The first failing step stops the run; its error is recorded in the report
// and returned. Context cancellation is checked before each step.
func (p *Pipeline) Execute(ctx context.Context, doc *document.Document, report *model.Report) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"file", report.Path,
				"reason", ctx.Err(),
			)
			report.SetError(ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"file", report.Path,
		)

		if err := step.Do(ctx, doc, report); err != nil {
			p.logger.Info("step stopped analysis",
				"step", step.Name(),
				"file", report.Path,
				"error", err,
			)
			report.SetError(err)
			return err
		}

		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}

	return nil
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
