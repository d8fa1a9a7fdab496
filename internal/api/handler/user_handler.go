package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glucotrack/glucotrack-be/internal/users"
)

// GetUser handles GET /api/v1/users/:clerk_id
// Returns the synced user record for a Clerk identity.
func (h *UserHandler) GetUser(c *gin.Context) {
	clerkID := c.Param("clerk_id")
	if clerkID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "clerk_id is required",
		})
		return
	}

	user, err := h.users.GetByClerkID(c.Request.Context(), clerkID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}
		h.logger.Error("Failed to get user", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get user",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    user.UserID,
		"clerk_id":   user.ClerkID,
		"email":      user.Email,
		"name":       user.Name,
		"user_role":  user.UserRole,
		"created_at": user.CreatedAt.Format(time.RFC3339),
		"updated_at": user.UpdatedAt.Format(time.RFC3339),
	})
}
