package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/glucotrack/glucotrack-be/internal/queue"
	gsync "github.com/glucotrack/glucotrack-be/internal/sync"
	"github.com/glucotrack/glucotrack-be/shared/rabbitmq"
)

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	RabbitClient  *rabbitmq.Client
	Processor     *gsync.Processor
	Sweeper       *gsync.Sweeper
	Concurrency   int
	PrefetchCount int
	SweepInterval time.Duration
}

// jobMessage carries one queued job reference plus the delivery tag needed
// to ACK or NACK it after processing.
type jobMessage struct {
	JobID       string
	DeliveryTag uint64
}

// Worker consumes job messages from RabbitMQ and executes them through the
// sync processor. A cron schedule periodically requeues RETRY jobs.
type Worker struct {
	logger        *slog.Logger
	rabbitClient  *rabbitmq.Client
	processor     *gsync.Processor
	sweeper       *gsync.Sweeper
	concurrency   int
	prefetchCount int
	sweepInterval time.Duration
	workerID      string
	jobsChan      chan *jobMessage
	stopChan      chan struct{}
	wg            sync.WaitGroup
	cron          *cron.Cron
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = cfg.Concurrency
	}

	return &Worker{
		logger:        cfg.Logger,
		rabbitClient:  cfg.RabbitClient,
		processor:     cfg.Processor,
		sweeper:       cfg.Sweeper,
		concurrency:   cfg.Concurrency,
		prefetchCount: prefetch,
		sweepInterval: cfg.SweepInterval,
		workerID:      uuid.New().String(),
		jobsChan:      make(chan *jobMessage),
		stopChan:      make(chan struct{}),
		cron:          cron.New(),
	}
}

// Start begins consuming and processing jobs. It blocks until ctx is
// canceled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("sweep_interval", w.sweepInterval),
	)

	deliveries, err := w.setupConsumer(ctx)
	if err != nil {
		return fmt.Errorf("failed to set up consumer: %w", err)
	}

	w.spawnWorkerPool(ctx)

	if err := w.startRetrySweeper(ctx); err != nil {
		return fmt.Errorf("failed to start retry sweeper: %w", err)
	}

	w.startMessageDispatcher(ctx, deliveries)

	return nil
}

// startRetrySweeper schedules the fixed-interval sweep that moves RETRY
// jobs back to PENDING and republishes them.
func (w *Worker) startRetrySweeper(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", w.sweepInterval)

	_, err := w.cron.AddFunc(spec, func() {
		requeued, err := w.sweeper.Sweep(ctx)
		if err != nil {
			w.logger.Error("Retry sweep failed",
				slog.String("error", err.Error()),
			)
			return
		}
		if requeued > 0 {
			w.logger.Info("Retry sweep requeued jobs",
				slog.Int("requeued", requeued),
			)
		}
	})
	if err != nil {
		return err
	}

	w.cron.Start()
	w.logger.Info("Retry sweeper scheduled", slog.String("schedule", spec))
	return nil
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	<-w.cron.Stop().Done()
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}

// processJob executes a single claimed job through the sync processor.
func (w *Worker) processJob(ctx context.Context, msg *jobMessage) error {
	result, err := w.processor.Process(ctx, msg.JobID)
	if err != nil {
		return err
	}

	w.logger.Info("Job processed",
		slog.String("job_id", result.JobID),
		slog.String("job_type", result.JobType),
		slog.String("status", result.Status),
	)
	return nil
}

// shouldRequeueJob determines if a job message should be redelivered based
// on the error type
func (w *Worker) shouldRequeueJob(err error) bool {
	// Another worker already owns the job; the message is stale.
	if errors.Is(err, queue.ErrJobAlreadyClaimed) {
		return false
	}

	// The job row is gone; redelivery cannot help.
	if errors.Is(err, queue.ErrJobNotFound) {
		return false
	}

	// Requeue for transient/retryable errors
	var retryableErr *queue.RetryableError
	if errors.As(err, &retryableErr) {
		return true
	}

	// Default: don't requeue for unknown errors
	return false
}
