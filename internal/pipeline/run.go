// Package pipeline provides the high-level orchestration for one site generation job.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/generation"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/llm"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

var tracer = otel.Tracer("sitegen/pipeline")

// Pipeline steps reported in progress events.
const (
	StepFoundation = "foundation"
	StepSections   = "sections"
	StepAggregate  = "aggregate"
)

// Progress states.
const (
	StateStarted   = "started"
	StateCompleted = "completed"
	StateFailed    = "failed"
	StateSkipped   = "skipped"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	JobID   string         `json:"job_id"`
	Step    string         `json:"step"`
	State   string         `json:"state"`
	Unit    types.UnitType `json:"unit,omitempty"`
	Message string         `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs. Section events
// arrive from concurrent goroutines, so the callback must be safe for
// concurrent use.
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for running the pipeline
type Options struct {
	// Transport is used for every model call. Required.
	Transport llm.Transport
	// Generation is passed to every unit generation.
	Generation generation.Options
	// Pricing defaults to DefaultPricing when nil.
	Pricing *Pricing
	// OnProgress is optional.
	OnProgress ProgressCallback
	// Now defaults to time.Now.
	Now func() time.Time
}

func (o *Options) pricing() Pricing {
	if o.Pricing == nil {
		return DefaultPricing()
	}
	return *o.Pricing
}

func (o *Options) now() time.Time {
	if o.Now == nil {
		return time.Now().UTC()
	}
	return o.Now()
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *Options, jobID uuid.UUID, step, state string, unit types.UnitType, message string) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			JobID:   jobID.String(),
			Step:    step,
			State:   state,
			Unit:    unit,
			Message: message,
		})
	}
}

// Run executes one generation job. Foundation is generated first and gates
// the job; the remaining sections are then generated concurrently with the
// Foundation theme. The returned error is a *RequestError when the request is
// rejected and a *FatalJobError when Foundation or a required section fails.
// Optional section failures are listed in FailedSections of the result.
func Run(ctx context.Context, req *types.GenerationRequest, opts Options) (*types.GenerationResult, error) {
	if opts.Transport == nil {
		return nil, &RequestError{Message: "transport is required"}
	}
	if req == nil {
		return nil, &RequestError{Message: "generation request is required"}
	}
	if err := req.Validate(); err != nil {
		return nil, &RequestError{Message: "generation request failed validation", Cause: err}
	}

	jobID := uuid.New()
	pricing := opts.pricing()

	ctx, span := tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("job.id", jobID.String()),
		attribute.String("business.name", req.BusinessName),
	))
	defer span.End()

	result, err := run(ctx, jobID, req, &opts, pricing)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("job.calls", result.Calls),
		attribute.Int64("job.cost_cents", result.CostCents),
		attribute.Int("job.failed_sections", len(result.FailedSections)),
	)
	return result, nil
}

func run(ctx context.Context, jobID uuid.UUID, req *types.GenerationRequest, opts *Options, pricing Pricing) (*types.GenerationResult, error) {
	// Foundation
	emitProgress(opts, jobID, StepFoundation, StateStarted, types.UnitFoundation, "Generating foundation")
	foundationOutcome := generation.GenerateUnit(ctx, types.UnitFoundation, req, nil, opts.Transport, opts.Generation)
	foundation, ok := foundationOutcome.Content.(*types.Foundation)
	if !foundationOutcome.Succeeded() || !ok {
		fatal := newFatalJobError(jobID, foundationOutcome, foundationOutcome.Attempts, foundationOutcome.Usage, pricing)
		emitProgress(opts, jobID, StepFoundation, StateFailed, types.UnitFoundation, fatal.Message)
		return nil, fatal
	}
	emitProgress(opts, jobID, StepFoundation, StateCompleted, types.UnitFoundation,
		fmt.Sprintf("Foundation %s after %d call(s)", foundationOutcome.Status, foundationOutcome.Attempts))

	// Sections
	theme := foundation.Theme
	var pending, skipped []types.UnitType
	for _, unit := range types.SectionUnits() {
		if req.Skips(unit) {
			skipped = append(skipped, unit)
			emitProgress(opts, jobID, StepSections, StateSkipped, unit, "Section not applicable")
			continue
		}
		pending = append(pending, unit)
	}

	emitProgress(opts, jobID, StepSections, StateStarted, "",
		fmt.Sprintf("Generating %d sections concurrently", len(pending)))
	outcomes := generateSections(ctx, jobID, pending, req, &theme, opts)

	// Aggregate runs after the join, so nothing below needs a lock.
	emitProgress(opts, jobID, StepAggregate, StateStarted, "", "Aggregating section outcomes")
	result := &types.GenerationResult{
		JobID:           jobID,
		Statuses:        map[types.UnitType]types.OutcomeStatus{types.UnitFoundation: foundationOutcome.Status},
		FailedSections:  []types.UnitType{},
		SkippedSections: skipped,
		Usage:           foundationOutcome.Usage,
		Calls:           foundationOutcome.Attempts,
	}
	result.SetSection(foundation)

	var requiredFailure *types.UnitOutcome
	for _, outcome := range outcomes {
		result.Usage = result.Usage.Add(outcome.Usage)
		result.Calls += outcome.Attempts

		if outcome.Succeeded() {
			result.SetSection(outcome.Content)
			result.Statuses[outcome.Unit] = outcome.Status
			continue
		}
		if outcome.Unit.IsRequired() {
			if requiredFailure == nil {
				requiredFailure = outcome
			}
			continue
		}
		result.FailedSections = append(result.FailedSections, outcome.Unit)
	}
	result.CostCents = pricing.CostCents(result.Usage)

	if requiredFailure != nil {
		fatal := newFatalJobError(jobID, requiredFailure, result.Calls, result.Usage, pricing)
		emitProgress(opts, jobID, StepAggregate, StateFailed, requiredFailure.Unit, fatal.Message)
		return nil, fatal
	}

	result.GeneratedAt = opts.now()
	emitProgress(opts, jobID, StepAggregate, StateCompleted, "",
		fmt.Sprintf("Generated %d units in %d call(s), %d optional section(s) unavailable",
			len(result.Statuses), result.Calls, len(result.FailedSections)))
	return result, nil
}

// generateSections runs every unit concurrently and waits for all of them.
// Outcomes are returned in the order of units. A slow or failing unit never
// cancels its siblings.
func generateSections(ctx context.Context, jobID uuid.UUID, units []types.UnitType, req *types.GenerationRequest, theme *types.Theme, opts *Options) []*types.UnitOutcome {
	outcomes := make([]*types.UnitOutcome, len(units))

	var g errgroup.Group
	for i, unit := range units {
		g.Go(func() error {
			outcome := generation.GenerateUnit(ctx, unit, req, theme, opts.Transport, opts.Generation)
			outcomes[i] = outcome
			if outcome.Succeeded() {
				emitProgress(opts, jobID, StepSections, StateCompleted, unit,
					fmt.Sprintf("%s %s", unit, outcome.Status))
			} else {
				emitProgress(opts, jobID, StepSections, StateFailed, unit, failureMessage(outcome))
			}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func failureMessage(outcome *types.UnitOutcome) string {
	if outcome.Failure == nil {
		return fmt.Sprintf("%s failed", outcome.Unit)
	}
	return fmt.Sprintf("%s failed (%s): %s", outcome.Unit, outcome.Failure.Reason, outcome.Failure.Message)
}

// IsFatal reports whether err is a FatalJobError and returns it.
func IsFatal(err error) (*FatalJobError, bool) {
	var fatal *FatalJobError
	if errors.As(err, &fatal) {
		return fatal, true
	}
	return nil, false
}
