package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glucotrack/glucotrack-be/internal/api/dto"
	"github.com/glucotrack/glucotrack-be/internal/api/ws"
	"github.com/glucotrack/glucotrack-be/internal/queue"
)

// GetJob handles GET /api/v1/jobs/:job_id
// Retrieves detailed information about a specific job
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID := c.Param("job_id")

	if _, err := uuid.Parse(jobID); err != nil {
		h.logger.Error("Invalid job_id format", slog.String("job_id", jobID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "job_id must be a valid UUID",
		})
		return
	}

	job, err := h.jobs.GetByID(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, queue.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
			return
		}
		h.logger.Error("Failed to get job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get job",
		})
		return
	}

	c.JSON(http.StatusOK, toJobDTO(job))
}

// ListJobs handles GET /api/v1/jobs
// Lists jobs with optional filtering and cursor pagination
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	jobs, err := h.jobs.List(c.Request.Context(), queue.Filter{
		Status:   req.Status,
		JobType:  req.JobType,
		PageSize: req.PageSize,
		Cursor:   cursor,
	})
	if err != nil {
		h.logger.Error("Failed to list jobs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list jobs",
		})
		return
	}

	hasMore := len(jobs) > req.PageSize
	if hasMore {
		jobs = jobs[:req.PageSize]
	}

	jobResponse := make([]dto.JobDTO, len(jobs))
	for i := range jobs {
		jobResponse[i] = toJobDTO(&jobs[i])
	}

	var nextCursor string
	if hasMore {
		last := jobs[len(jobs)-1]
		nextCursor = EncodeJobCursor(&queue.Cursor{
			CreatedAt: last.CreatedAt,
			JobID:     last.JobID,
		})
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs:       jobResponse,
		NextCursor: nextCursor,
	})
}

// ProcessJob handles POST /api/v1/jobs/process
// Claims and executes at most one pending job synchronously. Used as a
// manual drain alongside the worker service.
func (h *JobHandler) ProcessJob(c *gin.Context) {
	result, err := h.processor.ProcessNext(c.Request.Context())
	if err != nil {
		h.logger.Error("Job processing failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to process job",
		})
		return
	}

	if h.hub != nil && result.JobID != "" {
		h.hub.Broadcast(ws.Event{JobID: result.JobID, JobType: result.JobType, Status: result.Status})
	}

	c.JSON(http.StatusOK, result)
}

func toJobDTO(job *queue.Job) dto.JobDTO {
	d := dto.JobDTO{
		JobID:      job.JobID,
		JobType:    job.JobType,
		Payload:    string(job.Payload),
		Status:     job.Status,
		Priority:   job.Priority,
		RetryCount: job.RetryCount,
		Result:     string(job.Result),
		CreatedAt:  job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  job.UpdatedAt.Format(time.RFC3339),
	}
	if job.ErrorMessage.Valid {
		d.Error = job.ErrorMessage.String
	}
	if job.ProcessedAt != nil {
		d.ProcessedAt = job.ProcessedAt.Format(time.RFC3339)
	}
	return d
}
