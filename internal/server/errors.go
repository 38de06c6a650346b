// Package server provides the HTTP API for site generation jobs.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/db"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/pipeline"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// ErrValidation indicates a malformed path or query parameter
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrStoreUnavailable indicates the server runs without persistence
type ErrStoreUnavailable struct{}

func (e *ErrStoreUnavailable) Error() string {
	return "job storage is not configured"
}

// ErrorResponse is the JSON body of every error reply. Fatal job failures
// fill in the unit, reason and accounting fields.
type ErrorResponse struct {
	Error       string              `json:"error"`
	JobID       string              `json:"job_id,omitempty"`
	Unit        types.UnitType      `json:"unit,omitempty"`
	Reason      types.FailureReason `json:"reason,omitempty"`
	FieldErrors []types.FieldError  `json:"field_errors,omitempty"`
	Calls       int                 `json:"calls,omitempty"`
	CostCents   int64               `json:"cost_cents,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		requestErr *pipeline.RequestError
		fatalErr   *pipeline.FatalJobError
		validErr   *ErrValidation
		storeErr   *ErrStoreUnavailable
	)
	switch {
	case errors.As(err, &requestErr), errors.As(err, &validErr):
		return http.StatusBadRequest
	case errors.As(err, &fatalErr):
		if fatalErr.Reason == types.ReasonTransportExhausted {
			return http.StatusBadGateway
		}
		return http.StatusUnprocessableEntity
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &storeErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the response body for err.
func errorBody(err error) ErrorResponse {
	body := ErrorResponse{Error: err.Error()}
	if fatal, ok := pipeline.IsFatal(err); ok {
		body.JobID = fatal.JobID.String()
		body.Unit = fatal.Unit
		body.Reason = fatal.Reason
		body.FieldErrors = fatal.FieldErrors
		body.Calls = fatal.Calls
		body.CostCents = fatal.CostCents
	}
	return body
}
