package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// RequestError is returned when a job is rejected before any transport call.
type RequestError struct {
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid request: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid request: %s", e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// FatalJobError is returned when Foundation or a required section fails.
// No GenerationResult is produced. Calls and Usage cover every transport
// call made before the job was abandoned.
type FatalJobError struct {
	JobID       uuid.UUID
	Unit        types.UnitType
	Reason      types.FailureReason
	Message     string
	FieldErrors []types.FieldError
	Calls       int
	Usage       types.UsageRecord
	CostCents   int64
}

func (e *FatalJobError) Error() string {
	return fmt.Sprintf("generation job failed at %s (%s): %s", e.Unit, e.Reason, e.Message)
}

func newFatalJobError(jobID uuid.UUID, outcome *types.UnitOutcome, calls int, usage types.UsageRecord, pricing Pricing) *FatalJobError {
	err := &FatalJobError{
		JobID:     jobID,
		Unit:      outcome.Unit,
		Calls:     calls,
		Usage:     usage,
		CostCents: pricing.CostCents(usage),
	}
	if outcome.Failure != nil {
		err.Reason = outcome.Failure.Reason
		err.Message = outcome.Failure.Message
		err.FieldErrors = outcome.Failure.FieldErrors
	} else {
		err.Reason = types.ReasonMalformedOutput
		err.Message = "unit produced no content"
	}
	return err
}
