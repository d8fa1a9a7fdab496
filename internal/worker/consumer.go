package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// setupConsumer sets up RabbitMQ consumer with QoS and returns delivery channel
func (w *Worker) setupConsumer(ctx context.Context) (<-chan amqp.Delivery, error) {
	channel := w.rabbitClient.GetChannel()
	if channel == nil {
		return nil, fmt.Errorf("rabbitmq channel is nil")
	}

	// prefetch_count bounds unacknowledged messages per consumer,
	// prefetch_size 0 means no byte limit, global false means per-consumer
	err := channel.Qos(w.prefetchCount, 0, false)
	if err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	w.logger.Info("RabbitMQ QoS configured",
		slog.Int("prefetch_count", w.prefetchCount),
	)

	deliveries, err := w.rabbitClient.Consume(w.workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("RabbitMQ consumer started",
		slog.String("consumer_tag", w.workerID),
	)

	return deliveries, nil
}

// startMessageDispatcher listens to RabbitMQ deliveries and dispatches jobs to worker pool
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) {
	w.logger.Info("Message dispatcher started",
		slog.String("worker_id", w.workerID),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			var msg struct {
				JobID string `json:"job_id"`
			}

			if err := json.Unmarshal(delivery.Body, &msg); err != nil {
				w.logger.Error("Failed to parse message JSON",
					slog.String("error", err.Error()),
					slog.String("body", string(delivery.Body)),
				)
				// NACK without requeue - malformed messages should go to DLQ
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					w.logger.Error("Failed to NACK malformed message",
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			if _, err := uuid.Parse(msg.JobID); err != nil {
				w.logger.Error("Invalid job_id format - not a UUID",
					slog.String("job_id", msg.JobID),
					slog.String("error", err.Error()),
				)
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					w.logger.Error("Failed to NACK message with invalid job_id",
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			jobMsg := &jobMessage{
				JobID:       msg.JobID,
				DeliveryTag: delivery.DeliveryTag,
			}

			select {
			case w.jobsChan <- jobMsg:
				w.logger.Debug("Job dispatched to worker pool",
					slog.String("job_id", msg.JobID),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				w.logger.Info("Message dispatcher stopped while dispatching job")
				// NACK the message so it can be reprocessed
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					w.logger.Error("Failed to NACK message on shutdown",
						slog.String("error", nackErr.Error()),
					)
				}
				return
			}
		}
	}
}
