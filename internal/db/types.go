package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/pipeline"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// Job status constants
const (
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job represents a generation job record
type Job struct {
	ID           uuid.UUID  `json:"id"`
	BusinessName string     `json:"business_name"`
	Industry     string     `json:"industry"`
	Status       string     `json:"status"`
	Request      []byte     `json:"request"`
	Result       []byte     `json:"result,omitempty"`
	FailedUnit   *string    `json:"failed_unit,omitempty"`
	FailReason   *string    `json:"fail_reason,omitempty"`
	FailMessage  *string    `json:"fail_message,omitempty"`
	FieldErrors  []byte     `json:"field_errors,omitempty"`
	Calls        int        `json:"calls"`
	PromptTokens int64      `json:"prompt_tokens"`
	OutputTokens int64      `json:"completion_tokens"`
	CostCents    int64      `json:"cost_cents"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Section represents one generated unit stored for a completed job
type Section struct {
	JobID   uuid.UUID           `json:"job_id"`
	Unit    types.UnitType      `json:"unit"`
	Status  types.OutcomeStatus `json:"status"`
	Content json.RawMessage     `json:"content"`
}

// jobFromResult maps a completed job to its row.
func jobFromResult(req *types.GenerationRequest, result *types.GenerationResult) (*Job, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	completed := result.GeneratedAt
	return &Job{
		ID:           result.JobID,
		BusinessName: req.BusinessName,
		Industry:     req.Industry,
		Status:       JobStatusCompleted,
		Request:      reqJSON,
		Result:       resultJSON,
		Calls:        result.Calls,
		PromptTokens: result.Usage.PromptTokens,
		OutputTokens: result.Usage.CompletionTokens,
		CostCents:    result.CostCents,
		CompletedAt:  &completed,
	}, nil
}

// sectionsFromResult lists every unit present in result, in canonical order.
func sectionsFromResult(result *types.GenerationResult) ([]Section, error) {
	var sections []Section
	for _, unit := range types.AllUnits() {
		content := result.Section(unit)
		if content == nil {
			continue
		}
		data, err := json.Marshal(content)
		if err != nil {
			return nil, err
		}
		sections = append(sections, Section{
			JobID:   result.JobID,
			Unit:    unit,
			Status:  result.Statuses[unit],
			Content: data,
		})
	}
	return sections, nil
}

// jobFromFailure maps a failed job to its row.
func jobFromFailure(req *types.GenerationRequest, f *pipeline.FatalJobError, failedAt time.Time) (*Job, error) {
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var fieldErrors []byte
	if len(f.FieldErrors) > 0 {
		if fieldErrors, err = json.Marshal(f.FieldErrors); err != nil {
			return nil, err
		}
	}
	unit := f.Unit.String()
	reason := string(f.Reason)
	message := f.Message
	return &Job{
		ID:           f.JobID,
		BusinessName: req.BusinessName,
		Industry:     req.Industry,
		Status:       JobStatusFailed,
		Request:      reqJSON,
		FailedUnit:   &unit,
		FailReason:   &reason,
		FailMessage:  &message,
		FieldErrors:  fieldErrors,
		Calls:        f.Calls,
		PromptTokens: f.Usage.PromptTokens,
		OutputTokens: f.Usage.CompletionTokens,
		CostCents:    f.CostCents,
		CompletedAt:  &failedAt,
	}, nil
}
