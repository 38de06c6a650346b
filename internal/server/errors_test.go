package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/db"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/pipeline"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "request error", err: &pipeline.RequestError{Message: "bad"}, want: http.StatusBadRequest},
		{name: "validation error", err: &ErrValidation{Field: "limit", Message: "bad"}, want: http.StatusBadRequest},
		{name: "fatal malformed", err: &pipeline.FatalJobError{Reason: types.ReasonMalformedOutput}, want: http.StatusUnprocessableEntity},
		{name: "fatal schema", err: &pipeline.FatalJobError{Reason: types.ReasonSchemaInvalid}, want: http.StatusUnprocessableEntity},
		{name: "fatal transport", err: &pipeline.FatalJobError{Reason: types.ReasonTransportExhausted}, want: http.StatusBadGateway},
		{name: "not found", err: db.ErrNotFound, want: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", db.ErrNotFound), want: http.StatusNotFound},
		{name: "no store", err: &ErrStoreUnavailable{}, want: http.StatusServiceUnavailable},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorBody(t *testing.T) {
	t.Run("fatal error carries accounting", func(t *testing.T) {
		id := uuid.New()
		body := errorBody(&pipeline.FatalJobError{
			JobID:       id,
			Unit:        types.UnitAbout,
			Reason:      types.ReasonSchemaInvalid,
			Message:     "schema violation",
			FieldErrors: []types.FieldError{{Field: "content", Message: "is required"}},
			Calls:       9,
			CostCents:   3,
		})
		assert.Equal(t, id.String(), body.JobID)
		assert.Equal(t, types.UnitAbout, body.Unit)
		assert.Equal(t, types.ReasonSchemaInvalid, body.Reason)
		assert.Len(t, body.FieldErrors, 1)
		assert.Equal(t, 9, body.Calls)
		assert.Equal(t, int64(3), body.CostCents)
	})

	t.Run("other errors carry only the message", func(t *testing.T) {
		body := errorBody(db.ErrNotFound)
		assert.Equal(t, ErrorResponse{Error: "job not found"}, body)
	})
}
