package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/glucotrack/glucotrack-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "glucotrack-api-service",
		})
	})

	webhookHandler := handler.NewWebhookHandler(deps)
	jobHandler := handler.NewJobHandler(deps)
	readingHandler := handler.NewReadingHandler(deps)
	userHandler := handler.NewUserHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Job status feed for dashboards
		if deps.Hub != nil {
			v1.GET("/ws", func(c *gin.Context) {
				if err := deps.Hub.Serve(c.Writer, c.Request); err != nil {
					deps.Logger.Error("websocket upgrade failed", "error", err)
				}
			})
		}

		webhooks := v1.Group("/webhooks")
		{
			// POST /api/v1/webhooks/clerk - Receive Clerk identity events
			webhooks.POST("/clerk", webhookHandler.HandleClerkWebhook)
		}

		jobs := v1.Group("/jobs")
		{
			// GET /api/v1/jobs - List jobs with filtering and pagination
			jobs.GET("", jobHandler.ListJobs)

			// POST /api/v1/jobs/process - Claim and run one pending job
			jobs.POST("/process", jobHandler.ProcessJob)

			// GET /api/v1/jobs/:job_id - Get job details
			jobs.GET("/:job_id", jobHandler.GetJob)
		}

		readings := v1.Group("/readings")
		{
			readings.POST("", readingHandler.CreateReading)
			readings.GET("", readingHandler.ListReadings)
			readings.GET("/:reading_id", readingHandler.GetReading)
			readings.PUT("/:reading_id", readingHandler.UpdateReading)
			readings.DELETE("/:reading_id", readingHandler.DeleteReading)
		}

		// GET /api/v1/months/:month - Monthly aggregates with estimated A1C
		v1.GET("/months/:month", readingHandler.GetMonth)

		// GET /api/v1/runs - Consecutive-day reading streaks
		v1.GET("/runs", readingHandler.GetRuns)

		users := v1.Group("/users")
		{
			users.GET("/:clerk_id", userHandler.GetUser)
		}
	}

	return r
}
