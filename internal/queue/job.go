// Package queue holds the durable user-sync job table: the model, the status
// machine, and the store every other component coordinates through.
package queue

import (
	"database/sql"
	"time"
)

// Job status constants. A job moves PENDING -> PROCESSING -> one of
// COMPLETED, FAILED, RETRY; the retry sweep moves RETRY back to PENDING.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusRetry      = "RETRY"
)

// DefaultPriority is assigned to jobs enqueued by the webhook receiver.
const DefaultPriority = 1

// Job is one queued unit of user-sync work.
type Job struct {
	JobID        string         `db:"job_id"`
	JobType      string         `db:"job_type"`
	Payload      []byte         `db:"payload"`
	Status       string         `db:"status"`
	ErrorMessage sql.NullString `db:"error"`
	Priority     int            `db:"priority"`
	RetryCount   int            `db:"retry_count"`
	Result       []byte         `db:"result"`
	ProcessedAt  *time.Time     `db:"processed_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}
