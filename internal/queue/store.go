package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// claimAttempts bounds the select-then-claim loop in ClaimNext when racing
// other processors for the head of the queue.
const claimAttempts = 3

const jobColumns = `job_id, job_type, payload, status, error, priority, retry_count, result, processed_at, created_at, updated_at`

// Store handles all database operations on the jobs table. Queries use ?
// bindvars rebound per driver so the same store runs on PostgreSQL in
// production and sqlite in tests.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store instance
func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// Enqueue inserts a new PENDING job and returns it.
func (s *Store) Enqueue(ctx context.Context, jobType string, payload any) (*Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	now := time.Now().UTC()
	job := &Job{
		JobID:     uuid.New().String(),
		JobType:   jobType,
		Payload:   body,
		Status:    StatusPending,
		Priority:  DefaultPriority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := s.db.Rebind(`
		INSERT INTO jobs (job_id, job_type, payload, status, priority, retry_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err = s.db.ExecContext(ctx, query,
		job.JobID,
		job.JobType,
		job.Payload,
		job.Status,
		job.Priority,
		job.RetryCount,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.logger.Info("Job enqueued",
		slog.String("job_id", job.JobID),
		slog.String("job_type", job.JobType),
	)

	return job, nil
}

// GetByID retrieves a job by its ID.
func (s *Store) GetByID(ctx context.Context, jobID string) (*Job, error) {
	query := s.db.Rebind(`SELECT ` + jobColumns + ` FROM jobs WHERE job_id = ?`)

	var job Job
	if err := s.db.GetContext(ctx, &job, query, jobID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// Filter narrows a List call.
type Filter struct {
	Status   string
	JobType  string
	PageSize int
	Cursor   *Cursor
}

// Cursor marks a position for keyset pagination over the jobs list.
type Cursor struct {
	CreatedAt time.Time
	JobID     string
}

// List returns jobs newest first, fetching one row past PageSize so the
// caller can detect whether more results exist.
func (s *Store) List(ctx context.Context, filter Filter) ([]Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	if filter.JobType != "" {
		query += " AND job_type = ?"
		args = append(args, filter.JobType)
	}

	if filter.Cursor != nil {
		query += " AND (created_at, job_id) < (?, ?)"
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
	}

	query += " ORDER BY created_at DESC, job_id DESC LIMIT ?"
	args = append(args, filter.PageSize+1)

	var jobs []Job
	if err := s.db.SelectContext(ctx, &jobs, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// Claim attempts to move one job from PENDING to PROCESSING. The update is
// conditional on the current status, so among any number of concurrent callers
// exactly one wins; the rest get ErrJobAlreadyClaimed.
func (s *Store) Claim(ctx context.Context, jobID string) (*Job, error) {
	query := s.db.Rebind(`
		UPDATE jobs
		SET status = ?, updated_at = ?
		WHERE job_id = ? AND status = ?
		RETURNING ` + jobColumns)

	var job Job
	err := s.db.GetContext(ctx, &job, query, StatusProcessing, time.Now().UTC(), jobID, StatusPending)
	if err != nil {
		if err == sql.ErrNoRows {
			s.logger.Warn("Failed to claim job - already claimed or not found",
				slog.String("job_id", jobID),
			)
			return nil, ErrJobAlreadyClaimed
		}
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	s.logger.Info("Job claimed",
		slog.String("job_id", job.JobID),
		slog.String("job_type", job.JobType),
	)

	return &job, nil
}

// ClaimNext claims the highest-priority, oldest PENDING job. Ordering is
// priority DESC then created_at ASC; per-entity ordering across jobs for the
// same clerk_id is only as strong as that dequeue order. Returns
// ErrNoPendingJobs when the queue is empty.
func (s *Store) ClaimNext(ctx context.Context) (*Job, error) {
	selectQuery := s.db.Rebind(`
		SELECT job_id FROM jobs
		WHERE status = ?
		ORDER BY priority DESC, created_at ASC
		LIMIT 1
	`)

	for attempt := 0; attempt < claimAttempts; attempt++ {
		var jobID string
		err := s.db.GetContext(ctx, &jobID, selectQuery, StatusPending)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, ErrNoPendingJobs
			}
			return nil, fmt.Errorf("failed to select next pending job: %w", err)
		}

		job, err := s.Claim(ctx, jobID)
		if err == ErrJobAlreadyClaimed {
			// Lost the race for this row; another processor owns it now.
			continue
		}
		if err != nil {
			return nil, err
		}

		return job, nil
	}

	return nil, ErrNoPendingJobs
}

// MarkCompleted records a successful outcome and stamps processed_at.
func (s *Store) MarkCompleted(ctx context.Context, jobID string, result any) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	now := time.Now().UTC()
	query := s.db.Rebind(`
		UPDATE jobs
		SET status = ?, result = ?, error = NULL, processed_at = ?, updated_at = ?
		WHERE job_id = ?
	`)

	if _, err := s.db.ExecContext(ctx, query, StatusCompleted, resultJSON, now, now, jobID); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	s.logger.Info("Job completed",
		slog.String("job_id", jobID),
	)

	return nil
}

// MarkFailed records a terminal failure and stamps processed_at.
func (s *Store) MarkFailed(ctx context.Context, jobID, errMsg string) error {
	now := time.Now().UTC()
	query := s.db.Rebind(`
		UPDATE jobs
		SET status = ?, error = ?, processed_at = ?, updated_at = ?
		WHERE job_id = ?
	`)

	if _, err := s.db.ExecContext(ctx, query, StatusFailed, errMsg, now, now, jobID); err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}

	s.logger.Warn("Job failed",
		slog.String("job_id", jobID),
		slog.String("error", errMsg),
	)

	return nil
}

// MarkRetry parks a job in RETRY and bumps its retry count. processed_at is
// left unset: a retry is not a terminal attempt.
func (s *Store) MarkRetry(ctx context.Context, jobID, errMsg string) error {
	query := s.db.Rebind(`
		UPDATE jobs
		SET status = ?, error = ?, retry_count = retry_count + 1, updated_at = ?
		WHERE job_id = ?
	`)

	if _, err := s.db.ExecContext(ctx, query, StatusRetry, errMsg, time.Now().UTC(), jobID); err != nil {
		return fmt.Errorf("failed to mark job for retry: %w", err)
	}

	s.logger.Info("Job parked for retry",
		slog.String("job_id", jobID),
		slog.String("error", errMsg),
	)

	return nil
}

// RequeueRetries bulk-moves every RETRY job back to PENDING and returns their
// ids so the caller can republish them. retry_count is untouched.
func (s *Store) RequeueRetries(ctx context.Context) ([]string, error) {
	query := s.db.Rebind(`
		UPDATE jobs
		SET status = ?, updated_at = ?
		WHERE status = ?
		RETURNING job_id
	`)

	var jobIDs []string
	if err := s.db.SelectContext(ctx, &jobIDs, query, StatusPending, time.Now().UTC(), StatusRetry); err != nil {
		return nil, fmt.Errorf("failed to requeue retry jobs: %w", err)
	}

	if len(jobIDs) > 0 {
		s.logger.Info("Requeued retry jobs",
			slog.Int("count", len(jobIDs)),
		)
	}

	return jobIDs, nil
}
