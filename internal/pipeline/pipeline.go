package pipeline

import (
	"context"
	"log/slog"

	"github.com/contactscan/contactscan/internal/model"
	"github.com/contactscan/contactscan/internal/store"
)

// Job carries the state of one seed through the pipeline steps.
type Job struct {
	// SeedURL is the URL as given by the user.
	SeedURL string

	// ResolvedURL is the seed after scheme defaulting and redirect
	// resolution. Set by the resolve step; the crawl starts here.
	ResolvedURL string

	// Store accumulates findings across steps.
	Store *store.Store

	// Stats holds the crawl statistics once the crawl step ran.
	Stats model.CrawlStats

	// Images holds image URLs collected during the crawl for EXIF
	// analysis.
	Images []string

	// Result is the sealed crawl result. Set by the finalize step.
	Result *model.CrawlResult

	// Err records the first step error when the pipeline continues
	// past failures.
	Err error

	// PerformedSteps lists the names of the steps that ran.
	PerformedSteps []string
}

// NewJob creates a Job for the given seed URL with an empty store.
func NewJob(seedURL string) *Job {
	return &Job{
		SeedURL: seedURL,
		Store:   store.New(),
	}
}

// Aborted reports whether the job's crawl was cancelled.
func (j *Job) Aborted() bool {
	return j.Stats.State == model.StateAborted
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the job
// state accumulated by previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation, and the job to modify.
	// Returns an error if the step fails critically; non-critical errors
	// should be recorded on the job and return nil.
	Do(ctx context.Context, job *Job) error

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

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, a default logger is created.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. Failed steps are logged and their errors
// are recorded on the job, but subsequent steps still execute.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
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
//
// Cancellation is left to the steps: a cancelled context aborts the
// crawl step, but later steps (finalize, persist) still run so partial
// findings survive an interrupt.
//
// Returns the first error encountered if continueOnError is false,
// or nil if all steps complete (errors are recorded on the job).
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		p.logger.Info("executing step",
			"step", step.Name(),
			"seed_url", job.SeedURL,
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"seed_url", job.SeedURL,
				"error", err,
			)

			if job.Err == nil {
				job.Err = err
			}
			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"seed_url", job.SeedURL,
			)
		}

		job.PerformedSteps = append(job.PerformedSteps, step.Name())
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
