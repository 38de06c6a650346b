package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/pipeline"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

func setupTestDB(t *testing.T) *DB {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.EnsureSchema(ctx))
	return db
}

func TestSaveAndGetResult_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	result := testResult()
	require.NoError(t, db.SaveResult(ctx, testRequest(), result))

	got, err := db.GetResult(ctx, result.JobID)
	require.NoError(t, err)
	assert.Equal(t, result.JobID, got.JobID)
	assert.Equal(t, result.About, got.About)
	assert.Equal(t, result.Statuses, got.Statuses)
	assert.Equal(t, result.Usage, got.Usage)

	sections, err := db.ListSections(ctx, result.JobID)
	require.NoError(t, err)
	require.Len(t, sections, 4)
	assert.Equal(t, types.UnitFoundation, sections[0].Unit)

	job, err := db.GetJob(ctx, result.JobID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.False(t, job.CreatedAt.IsZero())
}

func TestSaveFailure_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	fatal := &pipeline.FatalJobError{
		JobID:   uuid.New(),
		Unit:    types.UnitFoundation,
		Reason:  types.ReasonTransportExhausted,
		Message: "transport timeout",
		Calls:   3,
	}
	require.NoError(t, db.SaveFailure(ctx, testRequest(), fatal, time.Now()))

	job, err := db.GetJob(ctx, fatal.JobID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, job.Status)
	require.NotNil(t, job.FailedUnit)
	assert.Equal(t, "foundation", *job.FailedUnit)

	_, err = db.GetResult(ctx, fatal.JobID)
	assert.ErrorIs(t, err, ErrNotFound)

	jobs, err := db.ListRecentJobs(ctx, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, jobs)
}

func TestGetJob_NotFound_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetJob(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
