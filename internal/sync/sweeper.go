package sync

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/glucotrack/glucotrack-be/internal/queue"
)

// Publisher pushes job-id messages to the queue transport. Satisfied by the
// RabbitMQ client; nil disables republishing.
type Publisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// Sweeper is the periodic recovery pass over RETRY jobs.
type Sweeper struct {
	jobs      *queue.Store
	publisher Publisher
	logger    *slog.Logger
}

// NewSweeper creates a new Sweeper instance
func NewSweeper(jobs *queue.Store, publisher Publisher, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		jobs:      jobs,
		publisher: publisher,
		logger:    logger,
	}
}

// Sweep moves every RETRY job back to PENDING and republishes the requeued
// ids so consumers pick them up. The sweep interval is the only backoff;
// retry counts are untouched here. Returns the number of jobs requeued.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	jobIDs, err := s.jobs.RequeueRetries(ctx)
	if err != nil {
		return 0, err
	}

	if s.publisher != nil {
		for _, jobID := range jobIDs {
			body, err := json.Marshal(map[string]string{"job_id": jobID})
			if err != nil {
				s.logger.Error("Failed to marshal requeue message",
					slog.String("job_id", jobID),
					slog.String("error", err.Error()),
				)
				continue
			}

			// The row is already PENDING; a failed publish only delays the
			// job until the next sweep or manual trigger.
			if err := s.publisher.PublishWithRetry(ctx, body, "application/json"); err != nil {
				s.logger.Warn("Failed to republish requeued job",
					slog.String("job_id", jobID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return len(jobIDs), nil
}
