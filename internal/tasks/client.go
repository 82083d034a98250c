package tasks

import (
	"context"
	"fmt"

	"cybersite/internal/config"
	"cybersite/internal/utils/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// RedisOpt converts the redis settings into asynq connection options.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewRedisClient opens a plain go-redis client on the same database the queues use.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// TaskClient enqueues email tasks. It implements services.Dispatcher.
type TaskClient struct {
	client *asynq.Client
	logger *logger.Logger
}

func NewTaskClient(cfg config.RedisConfig) *TaskClient {
	return &TaskClient{
		client: asynq.NewClient(RedisOpt(cfg)),
		logger: logger.New("TASKS"),
	}
}

func (c *TaskClient) EnqueueCampaignEmail(ctx context.Context, campaignID, subscriberID string) error {
	task, err := NewCampaignEmailTask(campaignID, subscriberID)
	if err != nil {
		return err
	}
	info, err := c.client.EnqueueContext(ctx, task, EmailOptions()...)
	if err != nil {
		return fmt.Errorf("enqueue campaign email: %w", err)
	}
	c.logger.Debug("Queued campaign %s for subscriber %s as %s", campaignID, subscriberID, info.ID)
	return nil
}

func (c *TaskClient) EnqueueConfirmationEmail(ctx context.Context, subscriberID string) error {
	task, err := NewConfirmationEmailTask(subscriberID)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task, EmailOptions()...); err != nil {
		return fmt.Errorf("enqueue confirmation email: %w", err)
	}
	return nil
}

// Close closes the underlying asynq client
func (c *TaskClient) Close() error {
	return c.client.Close()
}
