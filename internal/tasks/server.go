package tasks

import (
	"context"
	"fmt"
	"time"

	"cybersite/internal/config"
	"cybersite/internal/utils/logger"

	"github.com/hibiken/asynq"
)

var queues = map[string]int{
	QueueCritical: 6, // High priority
	QueueDefault:  3, // Medium priority
	QueueLow:      1, // Low priority
}

// Server handles task processing
type Server struct {
	server      *asynq.Server
	handler     *TaskHandler
	logger      *logger.Logger
	concurrency int
}

// NewServer creates a new task processing server
func NewServer(redisCfg config.RedisConfig, concurrency int, sendWindow time.Duration, handler *TaskHandler, logger *logger.Logger) *Server {
	if concurrency < 1 {
		concurrency = 1
	}
	server := asynq.NewServer(
		RedisOpt(redisCfg),
		asynq.Config{
			Concurrency: concurrency,
			Queues:      queues,
			// Enable strict priority, meaning higher priority queues are processed first
			StrictPriority: true,
			IsFailure:      isFailure,
			RetryDelayFunc: retryDelay(sendWindow),
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				logger.Warn("Task %s failed after %d retries: %v", task.Type(), retried, err)
			}),
		},
	)

	return &Server{
		server:      server,
		handler:     handler,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Mux routes task types to their handlers.
func (h *TaskHandler) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeCampaignEmail, h.HandleCampaignEmail)
	mux.HandleFunc(TaskTypeConfirmationEmail, h.HandleConfirmationEmail)
	mux.HandleFunc(TaskTypeCampaignRecurring, h.HandleCampaignRecurring)
	return mux
}

// Start starts the task processing server
func (s *Server) Start() error {
	s.logger.Info("starting task processing server concurrency %d queues %v", s.concurrency, queues)

	if err := s.server.Start(s.handler.Mux()); err != nil {
		return fmt.Errorf("failed to start task server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the task processing server
func (s *Server) Shutdown() {
	s.logger.Info("shutting down task processing server")
	s.server.Shutdown()
}
