package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/uidiff/internal/model"
)

// Step is one stage of a comparison job: loading captures, running the
// engine, evaluating the gate or storing the result.
type Step interface {
	// Do fills in its part of the comparison.
	Do(ctx context.Context, c *model.Comparison) error

	// Name identifies the step in logs, errors and Comparison.Steps.
	Name() string
}

// StepError reports which step stopped a comparison.
type StepError struct {
	Step string
	Err  error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error { return e.Err }

// Pipeline runs the steps of a comparison job in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps running later steps after a failure. The
	// failure is still recorded on the comparison.
	continueOnError bool
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

// WithContinueOnError configures the pipeline to run the remaining steps
// after one fails.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
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

// Execute runs the steps against c. Cancellation is checked between steps.
//
// A failing step is recorded on c as a *StepError. Execute returns that
// error unless the pipeline continues on error. Every step that ran,
// failed or not, is appended to c.Steps.
func (p *Pipeline) Execute(ctx context.Context, c *model.Comparison) error {
	logger := p.logger.With("screen", c.Label)

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			logger.Warn("pipeline cancelled", "step", step.Name(), "reason", err)
			c.SetError(err)
			return err
		}

		err := p.run(ctx, logger, step, c)
		c.Steps = append(c.Steps, step.Name())
		if err == nil {
			continue
		}

		c.SetError(err)
		if !p.continueOnError {
			return err
		}
	}
	return nil
}

// run executes a single step and wraps its failure.
func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, step Step, c *model.Comparison) error {
	start := time.Now()
	logger.Debug("executing step", "step", step.Name())

	if err := step.Do(ctx, c); err != nil {
		logger.Error("step failed", "step", step.Name(), "error", err)
		return &StepError{Step: step.Name(), Err: err}
	}

	logger.Debug("step completed", "step", step.Name(), "elapsed", time.Since(start))
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
