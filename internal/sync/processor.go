// Package sync implements the user-sync job processor: claim a job, dispatch
// to the handler for its type, record the outcome.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/glucotrack/glucotrack-be/internal/clerkevent"
	"github.com/glucotrack/glucotrack-be/internal/identity"
	"github.com/glucotrack/glucotrack-be/internal/queue"
	"github.com/glucotrack/glucotrack-be/internal/users"
)

// Config holds processor dependencies
type Config struct {
	Jobs       *queue.Store
	Users      *users.Store
	Identity   identity.Store
	MaxRetries int
	Logger     *slog.Logger
}

// Processor executes user-sync jobs. Each Process/ProcessNext call handles
// at most one job end-to-end; mutual exclusion comes from the store's
// conditional claim.
type Processor struct {
	jobs       *queue.Store
	users      *users.Store
	identity   identity.Store
	maxRetries int
	logger     *slog.Logger
}

// NewProcessor creates a new Processor instance
func NewProcessor(cfg *Config) *Processor {
	return &Processor{
		jobs:       cfg.Jobs,
		users:      cfg.Users,
		identity:   cfg.Identity,
		maxRetries: cfg.MaxRetries,
		logger:     cfg.Logger,
	}
}

// Result summarizes one processor invocation. Success reports that the
// processor ran; a job that ended FAILED still yields Success=true with the
// job status carried in Status.
type Result struct {
	Success bool           `json:"success"`
	JobID   string         `json:"job_id,omitempty"`
	JobType string         `json:"job_type,omitempty"`
	Status  string         `json:"status,omitempty"`
	Result  map[string]any `json:"result,omitempty"`
	Message string         `json:"message,omitempty"`
}

// ProcessNext claims and processes the highest-priority, oldest pending job.
// An empty queue is a successful no-op.
func (p *Processor) ProcessNext(ctx context.Context) (*Result, error) {
	job, err := p.jobs.ClaimNext(ctx)
	if errors.Is(err, queue.ErrNoPendingJobs) {
		return &Result{Success: true, Message: "no pending jobs"}, nil
	}
	if err != nil {
		return nil, err
	}

	return p.run(ctx, job), nil
}

// Process claims and processes one specific job, the consumer path. Claim
// errors (already claimed, store unavailable) propagate so the caller can
// make its ack/nack decision.
func (p *Processor) Process(ctx context.Context, jobID string) (*Result, error) {
	job, err := p.jobs.Claim(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return p.run(ctx, job), nil
}

// run dispatches a claimed job and records its outcome. Handler errors never
// escape: they become RETRY or FAILED on the job row.
func (p *Processor) run(ctx context.Context, job *queue.Job) *Result {
	p.logger.Info("Processing job",
		slog.String("job_id", job.JobID),
		slog.String("job_type", job.JobType),
		slog.Int("retry_count", job.RetryCount),
	)

	result, err := p.dispatch(ctx, job)
	if err != nil {
		status := p.recordFailure(ctx, job, err)
		return &Result{
			Success: true,
			JobID:   job.JobID,
			JobType: job.JobType,
			Status:  status,
		}
	}

	if err := p.jobs.MarkCompleted(ctx, job.JobID, result); err != nil {
		p.logger.Error("Failed to record job completion",
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()),
		)
	}

	return &Result{
		Success: true,
		JobID:   job.JobID,
		JobType: job.JobType,
		Status:  queue.StatusCompleted,
		Result:  result,
	}
}

// dispatch decodes the payload and invokes the handler for the job's type.
// Panics are recovered into ordinary errors.
func (p *Processor) dispatch(ctx context.Context, job *queue.Job) (result map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	var payload clerkevent.Payload
	if len(job.Payload) > 0 {
		if unmarshalErr := json.Unmarshal(job.Payload, &payload); unmarshalErr != nil {
			return nil, fmt.Errorf("%w: %v", queue.ErrInvalidPayload, unmarshalErr)
		}
	}

	if payload.ClerkID == "" {
		return nil, fmt.Errorf("%w: missing clerk_id", queue.ErrInvalidPayload)
	}

	switch job.JobType {
	case clerkevent.JobTypeUserCreated:
		return p.handleUserCreated(ctx, job, &payload)
	case clerkevent.JobTypeUserUpdated:
		return p.handleUserUpdated(ctx, job, &payload)
	case clerkevent.JobTypeUserDeleted:
		return p.handleUserDeleted(ctx, job, &payload)
	default:
		return nil, fmt.Errorf("unknown job type %q", job.JobType)
	}
}

// handleUserCreated inserts the application user row. Replayed creations are
// successful no-ops.
func (p *Processor) handleUserCreated(ctx context.Context, job *queue.Job, payload *clerkevent.Payload) (map[string]any, error) {
	existing, err := p.users.GetByClerkID(ctx, payload.ClerkID)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		return nil, queue.NewRetryableError(err)
	}
	if existing != nil {
		return map[string]any{
			"message":  "user already exists",
			"clerk_id": payload.ClerkID,
			"user_id":  existing.UserID,
		}, nil
	}

	user, err := p.users.Create(ctx, payload.ClerkID, payload.Email, payload.Name, string(payload.UserRole))
	if err != nil {
		return nil, queue.NewRetryableError(err)
	}

	return map[string]any{
		"message":  "user created",
		"clerk_id": payload.ClerkID,
		"user_id":  user.UserID,
	}, nil
}

// handleUserUpdated updates the application row, then mirrors the change to
// the identity store. Step 2 failure is logged, never fatal: the application
// row is the source of truth for the job outcome.
func (p *Processor) handleUserUpdated(ctx context.Context, job *queue.Job, payload *clerkevent.Payload) (map[string]any, error) {
	affected, err := p.users.Update(ctx, payload.ClerkID, payload.Email, payload.Name, string(payload.UserRole))
	if err != nil {
		return nil, queue.NewRetryableError(err)
	}

	if affected == 0 {
		return map[string]any{
			"message":  "no matching user to update",
			"clerk_id": payload.ClerkID,
		}, nil
	}

	p.mirrorIdentityUpdate(ctx, job, payload)

	return map[string]any{
		"message":  "user updated",
		"clerk_id": payload.ClerkID,
	}, nil
}

// handleUserDeleted removes the application row and, when an email is known,
// the identity record. Deleting a missing user is a success.
func (p *Processor) handleUserDeleted(ctx context.Context, job *queue.Job, payload *clerkevent.Payload) (map[string]any, error) {
	affected, err := p.users.Delete(ctx, payload.ClerkID)
	if err != nil {
		return nil, queue.NewRetryableError(err)
	}

	if payload.Email != "" && p.identity != nil {
		if err := p.identity.DeleteByEmail(ctx, payload.Email); err != nil {
			p.logger.Warn("Identity record delete failed, continuing",
				slog.String("job_id", job.JobID),
				slog.String("clerk_id", payload.ClerkID),
				slog.String("error", err.Error()),
			)
		}
	}

	message := "user deleted"
	if affected == 0 {
		message = "user did not exist"
	}

	return map[string]any{
		"message":  message,
		"clerk_id": payload.ClerkID,
	}, nil
}

// mirrorIdentityUpdate pushes name and role back to the identity store,
// located via email. Best effort.
func (p *Processor) mirrorIdentityUpdate(ctx context.Context, job *queue.Job, payload *clerkevent.Payload) {
	if payload.Email == "" || p.identity == nil {
		return
	}

	firstName, lastName, _ := strings.Cut(payload.Name, " ")
	err := p.identity.UpdateByEmail(ctx, payload.Email, identity.Attributes{
		FirstName: firstName,
		LastName:  lastName,
		Role:      string(payload.UserRole),
	})
	if err != nil {
		p.logger.Warn("Identity record update failed, continuing",
			slog.String("job_id", job.JobID),
			slog.String("clerk_id", payload.ClerkID),
			slog.String("error", err.Error()),
		)
	}
}

// recordFailure moves a failed job to RETRY while it is under the retry
// ceiling and the error is transient, FAILED otherwise. Returns the status
// written.
func (p *Processor) recordFailure(ctx context.Context, job *queue.Job, handlerErr error) string {
	p.logger.Error("Job execution failed",
		slog.String("job_id", job.JobID),
		slog.String("job_type", job.JobType),
		slog.String("error", handlerErr.Error()),
	)

	if queue.IsRetryable(handlerErr) && job.RetryCount < p.maxRetries {
		if err := p.jobs.MarkRetry(ctx, job.JobID, handlerErr.Error()); err != nil {
			p.logger.Error("Failed to park job for retry",
				slog.String("job_id", job.JobID),
				slog.String("error", err.Error()),
			)
		}
		return queue.StatusRetry
	}

	if err := p.jobs.MarkFailed(ctx, job.JobID, handlerErr.Error()); err != nil {
		p.logger.Error("Failed to record job failure",
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()),
		)
	}
	return queue.StatusFailed
}
