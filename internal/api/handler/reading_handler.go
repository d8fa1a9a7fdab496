package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glucotrack/glucotrack-be/internal/api/dto"
	"github.com/glucotrack/glucotrack-be/internal/glucose"
)

// CreateReading handles POST /api/v1/readings
func (h *ReadingHandler) CreateReading(c *gin.Context) {
	var req dto.CreateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	takenAt, err := time.Parse(time.RFC3339, req.TakenAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "taken_at must be an RFC3339 timestamp",
		})
		return
	}

	reading, err := h.readings.Create(c.Request.Context(), req.ClerkID, req.ValueMgdl, req.Notes, takenAt)
	if err != nil {
		h.logger.Error("Failed to create reading", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create reading",
		})
		return
	}

	c.JSON(http.StatusCreated, toReadingDTO(reading))
}

// GetReading handles GET /api/v1/readings/:reading_id
func (h *ReadingHandler) GetReading(c *gin.Context) {
	readingID := c.Param("reading_id")
	if _, err := uuid.Parse(readingID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "reading_id must be a valid UUID",
		})
		return
	}

	reading, err := h.readings.GetByID(c.Request.Context(), readingID)
	if err != nil {
		if errors.Is(err, glucose.ErrReadingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reading not found",
			})
			return
		}
		h.logger.Error("Failed to get reading", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get reading",
		})
		return
	}

	c.JSON(http.StatusOK, toReadingDTO(reading))
}

// UpdateReading handles PUT /api/v1/readings/:reading_id
func (h *ReadingHandler) UpdateReading(c *gin.Context) {
	readingID := c.Param("reading_id")
	if _, err := uuid.Parse(readingID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "reading_id must be a valid UUID",
		})
		return
	}

	var req dto.UpdateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	takenAt, err := time.Parse(time.RFC3339, req.TakenAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "taken_at must be an RFC3339 timestamp",
		})
		return
	}

	reading, err := h.readings.Update(c.Request.Context(), readingID, req.ValueMgdl, req.Notes, takenAt)
	if err != nil {
		if errors.Is(err, glucose.ErrReadingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reading not found",
			})
			return
		}
		h.logger.Error("Failed to update reading", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update reading",
		})
		return
	}

	c.JSON(http.StatusOK, toReadingDTO(reading))
}

// DeleteReading handles DELETE /api/v1/readings/:reading_id
func (h *ReadingHandler) DeleteReading(c *gin.Context) {
	readingID := c.Param("reading_id")
	if _, err := uuid.Parse(readingID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "reading_id must be a valid UUID",
		})
		return
	}

	if err := h.readings.Delete(c.Request.Context(), readingID); err != nil {
		if errors.Is(err, glucose.ErrReadingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reading not found",
			})
			return
		}
		h.logger.Error("Failed to delete reading", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete reading",
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// ListReadings handles GET /api/v1/readings
func (h *ReadingHandler) ListReadings(c *gin.Context) {
	var req dto.ListReadingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "clerk_id is required",
		})
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	cursor, err := DecodeReadingCursor(req.Cursor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cursor",
		})
		return
	}

	readings, err := h.readings.List(c.Request.Context(), glucose.Filter{
		ClerkID:  req.ClerkID,
		PageSize: req.PageSize,
		Cursor:   cursor,
	})
	if err != nil {
		h.logger.Error("Failed to list readings", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list readings",
		})
		return
	}

	hasMore := len(readings) > req.PageSize
	if hasMore {
		readings = readings[:req.PageSize]
	}

	readingResponse := make([]dto.ReadingDTO, len(readings))
	for i := range readings {
		readingResponse[i] = toReadingDTO(&readings[i])
	}

	var nextCursor string
	if hasMore {
		last := readings[len(readings)-1]
		nextCursor = EncodeReadingCursor(&glucose.Cursor{
			TakenAt:   last.TakenAt,
			ReadingID: last.ReadingID,
		})
	}

	c.JSON(http.StatusOK, dto.ListReadingsResponse{
		Readings:   readingResponse,
		NextCursor: nextCursor,
	})
}

// GetMonth handles GET /api/v1/months/:month
// Returns aggregate stats and an estimated A1C for one calendar month.
func (h *ReadingHandler) GetMonth(c *gin.Context) {
	clerkID := c.Query("clerk_id")
	if clerkID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "clerk_id is required",
		})
		return
	}

	month, err := time.Parse("2006-01", c.Param("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "month must be in YYYY-MM format",
		})
		return
	}

	summary, err := h.readings.Month(c.Request.Context(), clerkID, month)
	if err != nil {
		h.logger.Error("Failed to summarize month", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to summarize month",
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetRuns handles GET /api/v1/runs
// Returns streaks of consecutive days with readings inside a date range.
func (h *ReadingHandler) GetRuns(c *gin.Context) {
	clerkID := c.Query("clerk_id")
	if clerkID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "clerk_id is required",
		})
		return
	}

	from, to, err := parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	readings, err := h.readings.ListRange(c.Request.Context(), clerkID, from, to)
	if err != nil {
		h.logger.Error("Failed to load readings for runs", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute runs",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs": glucose.ComputeRuns(readings),
	})
}

// parseRange defaults to the trailing 90 days when bounds are omitted.
func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -90)

	var err error
	if fromStr != "" {
		if from, err = time.Parse("2006-01-02", fromStr); err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be in YYYY-MM-DD format")
		}
	}
	if toStr != "" {
		if to, err = time.Parse("2006-01-02", toStr); err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be in YYYY-MM-DD format")
		}
		to = to.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, errors.New("from must be before to")
	}
	return from, to, nil
}

func toReadingDTO(reading *glucose.Reading) dto.ReadingDTO {
	return dto.ReadingDTO{
		ReadingID: reading.ReadingID,
		ClerkID:   reading.ClerkID,
		ValueMgdl: reading.ValueMgdl,
		Notes:     reading.Notes,
		TakenAt:   reading.TakenAt.Format(time.RFC3339),
		CreatedAt: reading.CreatedAt.Format(time.RFC3339),
		UpdatedAt: reading.UpdatedAt.Format(time.RFC3339),
	}
}
