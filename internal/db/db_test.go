package db

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/pipeline"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

func testRequest() *types.GenerationRequest {
	return &types.GenerationRequest{
		BusinessName: "Bloom & Root",
		Industry:     "Plant shop",
		Description:  "Neighborhood houseplant shop.",
		Contact:      types.ContactChannels{Email: "a@b.co"},
	}
}

func testResult() *types.GenerationResult {
	return &types.GenerationResult{
		JobID:      uuid.New(),
		Foundation: &types.Foundation{SiteName: "Bloom & Root"},
		About:      &types.AboutSection{Title: "About Us", Content: []string{"We grow plants."}},
		Contact:    &types.ContactSection{Title: "Contact", Email: "a@b.co"},
		Testimonials: &types.TestimonialsSection{
			Title: "Kind Words",
			Items: []types.Testimonial{{Quote: "Lovely.", Author: "Sam"}, {Quote: "Great.", Author: "Lee"}},
		},
		Statuses: map[types.UnitType]types.OutcomeStatus{
			types.UnitFoundation:   types.StatusSuccess,
			types.UnitAbout:        types.StatusSuccess,
			types.UnitContact:      types.StatusRecovered,
			types.UnitTestimonials: types.StatusSuccess,
		},
		FailedSections: []types.UnitType{types.UnitValues},
		Usage:          types.UsageRecord{PromptTokens: 900, CompletionTokens: 300},
		CostCents:      1,
		Calls:          8,
		GeneratedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestJobFromResult(t *testing.T) {
	req := testRequest()
	result := testResult()

	job, err := jobFromResult(req, result)
	require.NoError(t, err)

	assert.Equal(t, result.JobID, job.ID)
	assert.Equal(t, "Bloom & Root", job.BusinessName)
	assert.Equal(t, "Plant shop", job.Industry)
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Equal(t, 8, job.Calls)
	assert.Equal(t, int64(900), job.PromptTokens)
	assert.Equal(t, int64(300), job.OutputTokens)
	assert.Equal(t, int64(1), job.CostCents)
	require.NotNil(t, job.CompletedAt)
	assert.Equal(t, result.GeneratedAt, *job.CompletedAt)
	assert.Nil(t, job.FailedUnit)

	var decoded types.GenerationResult
	require.NoError(t, json.Unmarshal(job.Result, &decoded))
	assert.Equal(t, result.About, decoded.About)
	assert.Equal(t, []types.UnitType{types.UnitValues}, decoded.FailedSections)

	var decodedReq types.GenerationRequest
	require.NoError(t, json.Unmarshal(job.Request, &decodedReq))
	assert.Equal(t, *req, decodedReq)
}

func TestSectionsFromResult(t *testing.T) {
	result := testResult()

	sections, err := sectionsFromResult(result)
	require.NoError(t, err)

	units := make([]types.UnitType, len(sections))
	for i, s := range sections {
		units[i] = s.Unit
		assert.Equal(t, result.JobID, s.JobID)
	}
	assert.Equal(t, []types.UnitType{types.UnitFoundation, types.UnitAbout, types.UnitTestimonials, types.UnitContact}, units)
	assert.Equal(t, types.StatusRecovered, sections[3].Status)
	assert.JSONEq(t, `{"title":"Contact","email":"a@b.co"}`, string(sections[3].Content))
}

func TestJobFromFailure(t *testing.T) {
	fatal := &pipeline.FatalJobError{
		JobID:       uuid.New(),
		Unit:        types.UnitContact,
		Reason:      types.ReasonSchemaInvalid,
		Message:     "schema validation failed",
		FieldErrors: []types.FieldError{{Field: "email", Message: "email is required"}},
		Calls:       9,
		Usage:       types.UsageRecord{PromptTokens: 1000, CompletionTokens: 10},
		CostCents:   1,
	}
	failedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	job, err := jobFromFailure(testRequest(), fatal, failedAt)
	require.NoError(t, err)

	assert.Equal(t, fatal.JobID, job.ID)
	assert.Equal(t, JobStatusFailed, job.Status)
	require.NotNil(t, job.FailedUnit)
	assert.Equal(t, "contact", *job.FailedUnit)
	assert.Equal(t, "schema_invalid", *job.FailReason)
	assert.Equal(t, "schema validation failed", *job.FailMessage)
	assert.JSONEq(t, `[{"field":"email","message":"email is required"}]`, string(job.FieldErrors))
	assert.Nil(t, job.Result)
	assert.Equal(t, 9, job.Calls)
	assert.Equal(t, failedAt, *job.CompletedAt)
}

func TestJobFromFailure_NoFieldErrors(t *testing.T) {
	fatal := &pipeline.FatalJobError{JobID: uuid.New(), Unit: types.UnitFoundation, Reason: types.ReasonTransportExhausted}

	job, err := jobFromFailure(testRequest(), fatal, time.Now())
	require.NoError(t, err)
	assert.Nil(t, job.FieldErrors)
}
