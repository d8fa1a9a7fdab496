package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/glucotrack/glucotrack-be/internal/api/ws"
	"github.com/glucotrack/glucotrack-be/internal/clerkevent"
)

// HandleClerkWebhook handles POST /api/v1/webhooks/clerk
// Verifies the delivery signature, normalizes the event and enqueues a sync
// job. The job is executed asynchronously; the webhook only records it.
func (h *WebhookHandler) HandleClerkWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to read webhook body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	wh, err := svix.NewWebhook(h.secret)
	if err != nil {
		h.logger.Error("Invalid webhook secret configuration", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Webhook verification unavailable",
		})
		return
	}

	if err := wh.Verify(body, c.Request.Header); err != nil {
		h.logger.Warn("Webhook signature verification failed", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid webhook signature",
		})
		return
	}

	event, err := clerkevent.ParseEvent(body)
	if err != nil {
		h.logger.Error("Malformed webhook event", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Malformed event payload",
		})
		return
	}

	jobType, err := clerkevent.JobTypeForEvent(event.Type)
	if err != nil {
		h.logger.Warn("Unsupported webhook event type", slog.String("event_type", event.Type))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unsupported event type",
		})
		return
	}

	payload := clerkevent.Normalize(event)

	job, err := h.jobs.Enqueue(c.Request.Context(), jobType, payload)
	if err != nil {
		h.logger.Error("Failed to enqueue sync job",
			slog.String("job_type", jobType),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to record event",
		})
		return
	}

	h.logger.Info("Webhook event enqueued",
		slog.String("job_id", job.JobID),
		slog.String("job_type", jobType),
		slog.String("clerk_id", payload.ClerkID),
	)

	// Hand the job to the worker queue. The job row is already durable, so a
	// publish failure only delays it until the retry sweep.
	if h.rabbitClient != nil {
		msg, _ := json.Marshal(map[string]string{"job_id": job.JobID})
		if err := h.rabbitClient.PublishWithRetry(c.Request.Context(), msg, "application/json"); err != nil {
			h.logger.Error("Failed to publish job message",
				slog.String("job_id", job.JobID),
				slog.String("error", err.Error()),
			)
		}
	}

	if h.hub != nil {
		h.hub.Broadcast(ws.Event{JobID: job.JobID, JobType: job.JobType, Status: job.Status})
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.JobID,
	})
}
