// Package db provides PostgreSQL storage for generation jobs and their sections.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/pipeline"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

// schemaSQL creates the tables used by the store. Every statement is idempotent.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS generation_jobs (
	id                UUID PRIMARY KEY,
	business_name     TEXT NOT NULL,
	industry          TEXT NOT NULL,
	status            TEXT NOT NULL CHECK (status IN ('completed', 'failed')),
	request           JSONB NOT NULL,
	result            JSONB,
	failed_unit       TEXT,
	fail_reason       TEXT,
	fail_message      TEXT,
	field_errors      JSONB,
	calls             INTEGER NOT NULL DEFAULT 0,
	prompt_tokens     BIGINT NOT NULL DEFAULT 0,
	completion_tokens BIGINT NOT NULL DEFAULT 0,
	cost_cents        BIGINT NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at      TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS generation_sections (
	job_id  UUID NOT NULL REFERENCES generation_jobs(id) ON DELETE CASCADE,
	unit    TEXT NOT NULL,
	status  TEXT NOT NULL,
	content JSONB NOT NULL,
	PRIMARY KEY (job_id, unit)
);

CREATE INDEX IF NOT EXISTS idx_generation_jobs_created_at ON generation_jobs (created_at DESC);
`

const insertJobSQL = `INSERT INTO generation_jobs
	(id, business_name, industry, status, request, result, failed_unit, fail_reason, fail_message,
	 field_errors, calls, prompt_tokens, completion_tokens, cost_cents, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

const jobColumns = `id, business_name, industry, status, request, result, failed_unit, fail_reason,
	fail_message, field_errors, calls, prompt_tokens, completion_tokens, cost_cents, created_at, completed_at`

// ErrNotFound is returned when a job does not exist.
var ErrNotFound = errors.New("job not found")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the job tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveResult stores a completed job and each of its sections in one transaction.
func (db *DB) SaveResult(ctx context.Context, req *types.GenerationRequest, result *types.GenerationResult) error {
	job, err := jobFromResult(req, result)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", result.JobID, err)
	}
	sections, err := sectionsFromResult(result)
	if err != nil {
		return fmt.Errorf("failed to marshal sections for job %s: %w", result.JobID, err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := insertJob(ctx, tx, job); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, s := range sections {
		batch.Queue(
			`INSERT INTO generation_sections (job_id, unit, status, content) VALUES ($1, $2, $3, $4)`,
			s.JobID, string(s.Unit), string(s.Status), []byte(s.Content),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save sections for job %s: %w", result.JobID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit job %s: %w", result.JobID, err)
	}
	return nil
}

// SaveFailure stores a job that ended with a fatal error.
func (db *DB) SaveFailure(ctx context.Context, req *types.GenerationRequest, fatal *pipeline.FatalJobError, failedAt time.Time) error {
	job, err := jobFromFailure(req, fatal, failedAt)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", fatal.JobID, err)
	}
	return insertJob(ctx, db.pool, job)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertJob(ctx context.Context, q execer, job *Job) error {
	_, err := q.Exec(ctx, insertJobSQL,
		job.ID, job.BusinessName, job.Industry, job.Status, job.Request, job.Result,
		job.FailedUnit, job.FailReason, job.FailMessage, job.FieldErrors,
		job.Calls, job.PromptTokens, job.OutputTokens, job.CostCents, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob retrieves a job record by ID
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM generation_jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return job, nil
}

// GetResult returns the stored result of a completed job. Jobs that failed
// return ErrNotFound.
func (db *DB) GetResult(ctx context.Context, id uuid.UUID) (*types.GenerationResult, error) {
	job, err := db.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != JobStatusCompleted || len(job.Result) == 0 {
		return nil, ErrNotFound
	}

	var result types.GenerationResult
	if err := json.Unmarshal(job.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result for job %s: %w", id, err)
	}
	return &result, nil
}

// ListSections returns the stored sections of a job in canonical unit order.
func (db *DB) ListSections(ctx context.Context, jobID uuid.UUID) ([]Section, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT job_id, unit, status, content FROM generation_sections WHERE job_id = $1`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	byUnit := make(map[types.UnitType]Section)
	for rows.Next() {
		var s Section
		var unit, status string
		var content []byte
		if err := rows.Scan(&s.JobID, &unit, &status, &content); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		s.Unit = types.UnitType(unit)
		s.Status = types.OutcomeStatus(status)
		s.Content = content
		byUnit[s.Unit] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}

	var sections []Section
	for _, unit := range types.AllUnits() {
		if s, ok := byUnit[unit]; ok {
			sections = append(sections, s)
		}
	}
	return sections, nil
}

// ListRecentJobs returns the most recent jobs, newest first.
func (db *DB) ListRecentJobs(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM generation_jobs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func scanJob(row pgx.Row) (*Job, error) {
	var job Job
	err := row.Scan(
		&job.ID, &job.BusinessName, &job.Industry, &job.Status, &job.Request, &job.Result,
		&job.FailedUnit, &job.FailReason, &job.FailMessage, &job.FieldErrors,
		&job.Calls, &job.PromptTokens, &job.OutputTokens, &job.CostCents, &job.CreatedAt, &job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
