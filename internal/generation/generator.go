// Package generation produces one validated content unit: it builds the
// prompt, calls the transport with the unit's retry budget, and runs the
// extractor, repairer and validator over the response.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/extract"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/llm"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/prompts"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/schemas"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

var tracer = otel.Tracer("sitegen/generation")

// Options configures GenerateUnit.
type Options struct {
	// Overrides replaces parts of the default call configuration per unit.
	Overrides map[types.UnitType]Override
	// Observer receives outcome, repair and retry events. Nil means no observer.
	Observer Observer
}

func (o Options) observer() Observer {
	if o.Observer == nil {
		return NopObserver{}
	}
	return o.Observer
}

// GenerateUnit generates one unit. It never returns an error: every failure
// is reported as a Failed outcome with a reason. theme is required for
// section units and ignored for Foundation.
func GenerateUnit(ctx context.Context, unit types.UnitType, req *types.GenerationRequest, theme *types.Theme, transport llm.Transport, opts Options) *types.UnitOutcome {
	start := time.Now()
	obs := opts.observer()
	cfg := CallConfigFor(unit, opts.Overrides)

	ctx, span := tracer.Start(ctx, "generation.unit", trace.WithAttributes(
		attribute.String("unit.type", unit.String()),
		attribute.Float64("llm.temperature", float64(cfg.Temperature)),
		attribute.Int("llm.max_output_tokens", int(cfg.MaxOutputTokens)),
		attribute.Int("llm.retries", cfg.Retries),
	))
	defer span.End()

	outcome := &types.UnitOutcome{Unit: unit}
	generate(ctx, unit, req, theme, transport, cfg, obs, outcome)
	outcome.Duration = time.Since(start)

	span.SetAttributes(
		attribute.String("unit.status", string(outcome.Status)),
		attribute.Int("unit.attempts", outcome.Attempts),
		attribute.Int64("llm.prompt_tokens", outcome.Usage.PromptTokens),
		attribute.Int64("llm.completion_tokens", outcome.Usage.CompletionTokens),
	)
	if outcome.Failure != nil {
		span.SetStatus(codes.Error, string(outcome.Failure.Reason))
	}

	obs.OnUnitOutcome(unit, outcome)
	return outcome
}

func generate(ctx context.Context, unit types.UnitType, req *types.GenerationRequest, theme *types.Theme, transport llm.Transport, cfg llm.CallConfig, obs Observer, outcome *types.UnitOutcome) {
	prompt := prompts.Build(unit, req, theme)

	resp, terr := callWithRetry(ctx, unit, prompt, transport, cfg, obs, outcome)
	if terr != nil {
		fail(outcome, types.ReasonTransportExhausted, terr.Error(), nil)
		return
	}
	outcome.Truncated = resp.Truncated
	interpret(unit, resp.Text, obs, outcome)
}

// InterpretText runs extraction, repair and validation over raw model output
// without calling a transport. The outcome has no attempts or usage.
func InterpretText(unit types.UnitType, text string) *types.UnitOutcome {
	outcome := &types.UnitOutcome{Unit: unit}
	interpret(unit, text, NopObserver{}, outcome)
	return outcome
}

func interpret(unit types.UnitType, text string, obs Observer, outcome *types.UnitOutcome) {
	candidate, err := extract.Parse(text)
	if err != nil {
		fail(outcome, types.ReasonMalformedOutput, err.Error(), nil)
		return
	}
	outcome.Repairs = candidate.Repairs
	for _, step := range candidate.Repairs {
		obs.OnRepairApplied(unit, step)
	}

	result, err := schemas.ValidateAndRecover(candidate.Value, unit)
	if err != nil {
		fail(outcome, types.ReasonSchemaInvalid, err.Error(), nil)
		return
	}
	outcome.Fixes = result.Fixes
	if result.Status == schemas.StatusInvalid {
		fail(outcome, types.ReasonSchemaInvalid, "output does not match the unit schema", result.Errors)
		return
	}

	content, err := decode(result.Document, unit)
	if err != nil {
		fail(outcome, types.ReasonSchemaInvalid, err.Error(), nil)
		return
	}

	outcome.Content = content
	outcome.Status = types.StatusSuccess
	if len(outcome.Repairs) > 0 || result.Status == schemas.StatusRecovered {
		outcome.Status = types.StatusRecovered
	}
}

// callWithRetry calls the transport up to cfg.Retries+1 times. Each attempt
// gets its own deadline. Retries stop early only when ctx itself is done. Usage
// billed by every attempt, failed ones included, is added to the outcome.
func callWithRetry(ctx context.Context, unit types.UnitType, prompt prompts.Prompt, transport llm.Transport, cfg llm.CallConfig, obs Observer, outcome *types.UnitOutcome) (*llm.Response, *llm.TransportError) {
	maxAttempts := cfg.Retries + 1
	var lastErr *llm.TransportError

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		outcome.Attempts = attempt

		resp, err := callOnce(ctx, prompt, transport, cfg)
		if err == nil {
			outcome.Usage = outcome.Usage.Add(resp.Usage)
			return resp, nil
		}

		lastErr = llm.AsTransportError(err)
		outcome.Usage = outcome.Usage.Add(lastErr.Usage)

		if attempt == maxAttempts || ctx.Err() != nil {
			break
		}
		obs.OnTransportRetry(unit, attempt, lastErr)
	}
	return nil, lastErr
}

func callOnce(ctx context.Context, prompt prompts.Prompt, transport llm.Transport, cfg llm.CallConfig) (*llm.Response, error) {
	callCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	resp, err := transport.Call(callCtx, prompt.System, prompt.User, cfg)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !isTransportError(err) {
			return nil, &llm.TransportError{Kind: llm.KindTimeout, Message: "call deadline exceeded", Cause: err}
		}
		return nil, err
	}
	if resp == nil {
		return nil, &llm.TransportError{Kind: llm.KindUpstream, Message: "transport returned no response"}
	}
	return resp, nil
}

func isTransportError(err error) bool {
	var te *llm.TransportError
	return errors.As(err, &te)
}

// decode converts a validated document into the unit's typed record.
func decode(doc map[string]any, unit types.UnitType) (types.Content, error) {
	content := types.NewContent(unit)
	if content == nil {
		return nil, fmt.Errorf("unknown unit type %q", unit)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s document: %w", unit, err)
	}
	if err := json.Unmarshal(data, content); err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", unit, err)
	}
	return content, nil
}

func fail(outcome *types.UnitOutcome, reason types.FailureReason, message string, fieldErrors []types.FieldError) {
	outcome.Status = types.StatusFailed
	outcome.Content = nil
	outcome.Failure = &types.Failure{
		Reason:      reason,
		Message:     message,
		FieldErrors: fieldErrors,
	}
}
