package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/db"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/pipeline"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/schemas"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// JobResponse represents a stored job. The request and result are inlined
// as JSON rather than base64.
type JobResponse struct {
	ID           uuid.UUID         `json:"id"`
	BusinessName string            `json:"business_name"`
	Industry     string            `json:"industry"`
	Status       string            `json:"status"`
	Request      json.RawMessage   `json:"request"`
	Result       json.RawMessage   `json:"result,omitempty"`
	FailedUnit   string            `json:"failed_unit,omitempty"`
	FailReason   string            `json:"fail_reason,omitempty"`
	FailMessage  string            `json:"fail_message,omitempty"`
	FieldErrors  json.RawMessage   `json:"field_errors,omitempty"`
	Calls        int               `json:"calls"`
	Usage        types.UsageRecord `json:"usage"`
	CostCents    int64             `json:"cost_cents"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// JobSummary is one entry of the job list.
type JobSummary struct {
	ID           uuid.UUID `json:"id"`
	BusinessName string    `json:"business_name"`
	Status       string    `json:"status"`
	FailedUnit   string    `json:"failed_unit,omitempty"`
	Calls        int       `json:"calls"`
	CostCents    int64     `json:"cost_cents"`
	CreatedAt    time.Time `json:"created_at"`
}

// handleGenerate runs one generation job and returns its result
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	result, err := s.runJob(r.Context(), req, nil)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleGenerateStream runs one generation job and streams progress via SSE.
// The final event is "result", "failed" or "error".
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	// Reject invalid requests before the stream opens so they get a 400.
	if err := req.Validate(); err != nil {
		s.errorResponse(w, &pipeline.RequestError{Message: "generation request failed validation", Cause: err})
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	result, err := s.runJob(r.Context(), req, func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(EventProgress, event); err != nil {
			s.log.Debug("failed to write progress event", zap.Error(err))
		}
	})
	if err != nil {
		sse.WriteError(err)
		return
	}
	if err := sse.WriteEvent(EventResult, result); err != nil {
		s.log.Warn("failed to write result event", zap.Error(err))
	}
}

// decodeRequest reads the generation request body.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*types.GenerationRequest, error) {
	var req types.GenerationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		return nil, &pipeline.RequestError{Message: "invalid request body", Cause: err}
	}
	return &req, nil
}

// runJob attaches the prior-site excerpt, runs the pipeline, and persists the
// outcome when a store is configured. Persistence failures are logged only.
func (s *Server) runJob(ctx context.Context, req *types.GenerationRequest, onProgress pipeline.ProgressCallback) (*types.GenerationResult, error) {
	if s.priorSite != nil && req.PriorSiteURL != "" && req.PriorSiteExcerpt == "" {
		excerpt, err := s.priorSite(ctx, req.PriorSiteURL)
		if err != nil {
			s.log.Warn("prior site unavailable", zap.String("url", req.PriorSiteURL), zap.Error(err))
		} else {
			req.PriorSiteExcerpt = excerpt
		}
	}

	result, err := pipeline.Run(ctx, req, pipeline.Options{
		Transport:  s.transport,
		Generation: s.generation,
		Pricing:    s.pricing,
		OnProgress: onProgress,
	})

	if s.store != nil {
		// The job outcome is stored even if the client went away.
		saveCtx := context.WithoutCancel(ctx)
		if fatal, ok := pipeline.IsFatal(err); ok {
			if serr := s.store.SaveFailure(saveCtx, req, fatal, time.Now().UTC()); serr != nil {
				s.log.Error("failed to save failed job", zap.String("job_id", fatal.JobID.String()), zap.Error(serr))
			}
		} else if err == nil {
			if serr := s.store.SaveResult(saveCtx, req, result); serr != nil {
				s.log.Error("failed to save job", zap.String("job_id", result.JobID.String()), zap.Error(serr))
			}
		}
	}
	return result, err
}

// handleListJobs returns the most recent jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, &ErrStoreUnavailable{})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			s.errorResponse(w, &ErrValidation{Field: "limit", Message: "must be an integer between 1 and 100"})
			return
		}
		limit = n
	}

	jobs, err := s.store.ListRecentJobs(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	summaries := make([]JobSummary, 0, len(jobs))
	for _, job := range jobs {
		summaries = append(summaries, JobSummary{
			ID:           job.ID,
			BusinessName: job.BusinessName,
			Status:       job.Status,
			FailedUnit:   deref(job.FailedUnit),
			Calls:        job.Calls,
			CostCents:    job.CostCents,
			CreatedAt:    job.CreatedAt,
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": summaries})
}

// handleGetJob returns a stored job record
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.jobID(w, r)
	if !ok {
		return
	}

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, jobResponse(job))
}

// handleGetJobResult returns the result of a completed job
func (s *Server) handleGetJobResult(w http.ResponseWriter, r *http.Request) {
	id, ok := s.jobID(w, r)
	if !ok {
		return
	}

	result, err := s.store.GetResult(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleListJobSections returns the stored sections of a job
func (s *Server) handleListJobSections(w http.ResponseWriter, r *http.Request) {
	id, ok := s.jobID(w, r)
	if !ok {
		return
	}

	sections, err := s.store.ListSections(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if sections == nil {
		sections = []db.Section{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"sections": sections})
}

// handleGetSchema returns the JSON Schema of one unit
func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	unit, err := types.ParseUnitType(r.PathValue("unit"))
	if err != nil {
		s.errorResponse(w, &ErrValidation{Field: "unit", Message: err.Error()})
		return
	}
	schema, err := schemas.For(unit)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, schema.JSONSchema())
}

// jobID parses the {id} path value and checks that a store is configured.
func (s *Server) jobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if s.store == nil {
		s.errorResponse(w, &ErrStoreUnavailable{})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, &ErrValidation{Field: "id", Message: fmt.Sprintf("invalid job ID %q", r.PathValue("id"))})
		return uuid.Nil, false
	}
	return id, true
}

func jobResponse(job *db.Job) JobResponse {
	return JobResponse{
		ID:           job.ID,
		BusinessName: job.BusinessName,
		Industry:     job.Industry,
		Status:       job.Status,
		Request:      rawOrNil(job.Request),
		Result:       rawOrNil(job.Result),
		FailedUnit:   deref(job.FailedUnit),
		FailReason:   deref(job.FailReason),
		FailMessage:  deref(job.FailMessage),
		FieldErrors:  rawOrNil(job.FieldErrors),
		Calls:        job.Calls,
		Usage:        types.UsageRecord{PromptTokens: job.PromptTokens, CompletionTokens: job.OutputTokens},
		CostCents:    job.CostCents,
		CreatedAt:    job.CreatedAt,
		CompletedAt:  job.CompletedAt,
	}
}

func rawOrNil(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
