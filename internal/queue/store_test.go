package queue

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucotrack/glucotrack-be/internal/testdb"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(testdb.New(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type syncPayload struct {
	ClerkID string `json:"clerk_id"`
	Email   string `json:"email,omitempty"`
}

func TestEnqueueAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job, err := s.Enqueue(ctx, "USER_CREATED", syncPayload{ClerkID: "user_abc", Email: "a@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, job.JobID)

	got, err := s.GetByID(ctx, job.JobID)
	require.NoError(t, err)

	assert.Equal(t, "USER_CREATED", got.JobType)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, DefaultPriority, got.Priority)
	assert.Equal(t, 0, got.RetryCount)
	assert.Nil(t, got.ProcessedAt)
	assert.False(t, got.ErrorMessage.Valid)

	var payload syncPayload
	require.NoError(t, json.Unmarshal(got.Payload, &payload))
	assert.Equal(t, "user_abc", payload.ClerkID)
}

func TestGetByIDNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestClaimExclusivity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job, err := s.Enqueue(ctx, "USER_CREATED", syncPayload{ClerkID: "user_abc"})
	require.NoError(t, err)

	claimed, err := s.Claim(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, claimed.Status)

	// A second claim of the same job must lose.
	_, err = s.Claim(ctx, job.JobID)
	assert.ErrorIs(t, err, ErrJobAlreadyClaimed)
}

func TestClaimNextEmptyQueue(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ClaimNext(context.Background())
	assert.ErrorIs(t, err, ErrNoPendingJobs)
}

func TestClaimNextSingleJobOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job, err := s.Enqueue(ctx, "USER_CREATED", syncPayload{ClerkID: "user_abc"})
	require.NoError(t, err)

	first, err := s.ClaimNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.JobID, first.JobID)

	// The queue had exactly one job; the next invocation finds nothing.
	_, err = s.ClaimNext(ctx)
	assert.ErrorIs(t, err, ErrNoPendingJobs)
}

func TestClaimNextOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older, err := s.Enqueue(ctx, "USER_CREATED", syncPayload{ClerkID: "user_1"})
	require.NoError(t, err)
	newer, err := s.Enqueue(ctx, "USER_UPDATED", syncPayload{ClerkID: "user_2"})
	require.NoError(t, err)
	urgent, err := s.Enqueue(ctx, "USER_DELETED", syncPayload{ClerkID: "user_3"})
	require.NoError(t, err)

	base := time.Now().UTC().Add(-time.Hour)
	setJob := func(jobID string, priority int, createdAt time.Time) {
		_, err := s.db.Exec(s.db.Rebind(`UPDATE jobs SET priority = ?, created_at = ? WHERE job_id = ?`),
			priority, createdAt, jobID)
		require.NoError(t, err)
	}
	setJob(older.JobID, 1, base)
	setJob(newer.JobID, 1, base.Add(time.Minute))
	setJob(urgent.JobID, 5, base.Add(2*time.Minute))

	// Highest priority first, then FIFO by creation time.
	got, err := s.ClaimNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, urgent.JobID, got.JobID)

	got, err = s.ClaimNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, older.JobID, got.JobID)

	got, err = s.ClaimNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.JobID, got.JobID)
}

func TestMarkCompleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job, err := s.Enqueue(ctx, "USER_CREATED", syncPayload{ClerkID: "user_abc"})
	require.NoError(t, err)
	_, err = s.Claim(ctx, job.JobID)
	require.NoError(t, err)

	require.NoError(t, s.MarkCompleted(ctx, job.JobID, map[string]any{"message": "created"}))

	got, err := s.GetByID(ctx, job.JobID)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, got.Status)
	require.NotNil(t, got.ProcessedAt)
	assert.False(t, got.ErrorMessage.Valid)

	var result map[string]any
	require.NoError(t, json.Unmarshal(got.Result, &result))
	assert.Equal(t, "created", result["message"])
}

func TestMarkFailed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job, err := s.Enqueue(ctx, "USER_CREATED", syncPayload{ClerkID: "user_abc"})
	require.NoError(t, err)
	_, err = s.Claim(ctx, job.JobID)
	require.NoError(t, err)

	require.NoError(t, s.MarkFailed(ctx, job.JobID, "downstream unavailable"))

	got, err := s.GetByID(ctx, job.JobID)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, got.Status)
	require.NotNil(t, got.ProcessedAt)
	require.True(t, got.ErrorMessage.Valid)
	assert.Equal(t, "downstream unavailable", got.ErrorMessage.String)
}

func TestMarkRetry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job, err := s.Enqueue(ctx, "USER_UPDATED", syncPayload{ClerkID: "user_abc"})
	require.NoError(t, err)
	_, err = s.Claim(ctx, job.JobID)
	require.NoError(t, err)

	require.NoError(t, s.MarkRetry(ctx, job.JobID, "store timeout"))

	got, err := s.GetByID(ctx, job.JobID)
	require.NoError(t, err)

	assert.Equal(t, StatusRetry, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	assert.Nil(t, got.ProcessedAt, "a retry is not a terminal attempt")
	require.True(t, got.ErrorMessage.Valid)
	assert.Equal(t, "store timeout", got.ErrorMessage.String)
}

func TestRequeueRetries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	retrying, err := s.Enqueue(ctx, "USER_UPDATED", syncPayload{ClerkID: "user_1"})
	require.NoError(t, err)
	_, err = s.Claim(ctx, retrying.JobID)
	require.NoError(t, err)
	require.NoError(t, s.MarkRetry(ctx, retrying.JobID, "transient"))

	pending, err := s.Enqueue(ctx, "USER_CREATED", syncPayload{ClerkID: "user_2"})
	require.NoError(t, err)

	ids, err := s.RequeueRetries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{retrying.JobID}, ids)

	got, err := s.GetByID(ctx, retrying.JobID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, 1, got.RetryCount, "sweep must not touch retry_count")

	// Jobs already pending are left alone.
	untouched, err := s.GetByID(ctx, pending.JobID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, untouched.Status)

	// Second sweep has nothing to do.
	ids, err = s.RequeueRetries(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	var jobIDs []string
	for i := 0; i < 5; i++ {
		job, err := s.Enqueue(ctx, "USER_CREATED", syncPayload{ClerkID: "user_abc"})
		require.NoError(t, err)
		_, err = s.db.Exec(s.db.Rebind(`UPDATE jobs SET created_at = ? WHERE job_id = ?`),
			base.Add(time.Duration(i)*time.Minute), job.JobID)
		require.NoError(t, err)
		jobIDs = append(jobIDs, job.JobID)
	}

	failed, err := s.Enqueue(ctx, "USER_DELETED", syncPayload{ClerkID: "user_x"})
	require.NoError(t, err)
	_, err = s.Claim(ctx, failed.JobID)
	require.NoError(t, err)
	require.NoError(t, s.MarkFailed(ctx, failed.JobID, "boom"))

	t.Run("filter by status", func(t *testing.T) {
		jobs, err := s.List(ctx, Filter{Status: StatusFailed, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, failed.JobID, jobs[0].JobID)
	})

	t.Run("filter by job type", func(t *testing.T) {
		jobs, err := s.List(ctx, Filter{JobType: "USER_CREATED", PageSize: 10})
		require.NoError(t, err)
		assert.Len(t, jobs, 5)
	})

	t.Run("page size plus one and cursor", func(t *testing.T) {
		jobs, err := s.List(ctx, Filter{JobType: "USER_CREATED", PageSize: 2})
		require.NoError(t, err)
		// One extra row signals more results.
		require.Len(t, jobs, 3)

		// Newest first.
		assert.Equal(t, jobIDs[4], jobs[0].JobID)
		assert.Equal(t, jobIDs[3], jobs[1].JobID)

		next, err := s.List(ctx, Filter{
			JobType:  "USER_CREATED",
			PageSize: 10,
			Cursor:   &Cursor{CreatedAt: jobs[1].CreatedAt, JobID: jobs[1].JobID},
		})
		require.NoError(t, err)
		require.Len(t, next, 3)
		assert.Equal(t, jobIDs[2], next[0].JobID)
	})
}
