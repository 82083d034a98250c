package tasks

import (
	"fmt"
	"time"

	"cybersite/internal/config"
	"cybersite/internal/utils/logger"

	"github.com/hibiken/asynq"
)

// Scheduler handles periodic task scheduling
type Scheduler struct {
	scheduler     *asynq.Scheduler
	recurringSpec string
	logger        *logger.Logger
}

// NewScheduler creates a new task scheduler. recurringSpec is the cron spec
// of the campaign dispatch job.
func NewScheduler(redisCfg config.RedisConfig, recurringSpec string, logger *logger.Logger) *Scheduler {
	scheduler := asynq.NewScheduler(RedisOpt(redisCfg), &asynq.SchedulerOpts{
		Location: time.UTC,
	})

	return &Scheduler{
		scheduler:     scheduler,
		recurringSpec: recurringSpec,
		logger:        logger,
	}
}

// Start registers the periodic tasks and runs the scheduler in the background.
func (s *Scheduler) Start() error {
	if err := s.registerTasks(); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}

	s.logger.Info("starting task scheduler")
	return s.scheduler.Start()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Shutdown()
	s.logger.Info("task scheduler stopped")
}

// registerTasks registers all periodic tasks
func (s *Scheduler) registerTasks() error {
	next, err := NextRun(s.recurringSpec, time.Now().UTC())
	if err != nil {
		return err
	}
	// one sweep at a time; a slow run must not overlap the next
	if err := s.RegisterCustomTask(s.recurringSpec, NewCampaignRecurringTask(),
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(RetryMin),
		asynq.Timeout(TimeoutLong),
		asynq.Unique(TimeoutLong),
	); err != nil {
		return err
	}
	s.logger.Info("registered all periodic tasks, next campaign sweep at %s", next.Format(time.RFC3339))
	return nil
}

// RegisterCustomTask registers a custom periodic task
func (s *Scheduler) RegisterCustomTask(spec string, task *asynq.Task, opts ...asynq.Option) error {
	entryID, err := s.scheduler.Register(spec, task, opts...)
	if err != nil {
		return fmt.Errorf("failed to register custom task: %w", err)
	}

	s.logger.Info("registered custom task %s %s %s", task.Type(), spec, entryID)
	return nil
}
