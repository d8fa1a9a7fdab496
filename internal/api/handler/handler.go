package handler

import (
	"log/slog"

	"github.com/glucotrack/glucotrack-be/internal/api/ws"
	"github.com/glucotrack/glucotrack-be/internal/glucose"
	"github.com/glucotrack/glucotrack-be/internal/queue"
	"github.com/glucotrack/glucotrack-be/internal/sync"
	"github.com/glucotrack/glucotrack-be/internal/users"
	"github.com/glucotrack/glucotrack-be/shared/rabbitmq"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger        *slog.Logger
	RabbitClient  *rabbitmq.Client
	Hub           *ws.Hub
	Jobs          *queue.Store
	Users         *users.Store
	Readings      *glucose.Store
	Processor     *sync.Processor
	WebhookSecret string
}

// WebhookHandler handles Clerk webhook deliveries
type WebhookHandler struct {
	logger       *slog.Logger
	rabbitClient *rabbitmq.Client
	hub          *ws.Hub
	jobs         *queue.Store
	secret       string
}

func NewWebhookHandler(deps *Dependencies) *WebhookHandler {
	return &WebhookHandler{
		logger:       deps.Logger,
		rabbitClient: deps.RabbitClient,
		hub:          deps.Hub,
		jobs:         deps.Jobs,
		secret:       deps.WebhookSecret,
	}
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger    *slog.Logger
	jobs      *queue.Store
	processor *sync.Processor
	hub       *ws.Hub
}

func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:    deps.Logger,
		jobs:      deps.Jobs,
		processor: deps.Processor,
		hub:       deps.Hub,
	}
}

// ReadingHandler handles glucose reading HTTP requests
type ReadingHandler struct {
	logger   *slog.Logger
	readings *glucose.Store
}

func NewReadingHandler(deps *Dependencies) *ReadingHandler {
	return &ReadingHandler{
		logger:   deps.Logger,
		readings: deps.Readings,
	}
}

// UserHandler handles user lookup requests
type UserHandler struct {
	logger *slog.Logger
	users  *users.Store
}

func NewUserHandler(deps *Dependencies) *UserHandler {
	return &UserHandler{
		logger: deps.Logger,
		users:  deps.Users,
	}
}
