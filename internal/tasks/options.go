package tasks

import (
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// ErrRateLimited is returned by handlers when the send rate is exhausted.
// The task is retried after the window without counting as a failure.
var ErrRateLimited = errors.New("send rate exceeded")

// EmailOptions are the enqueue options shared by all email tasks.
func EmailOptions() []asynq.Option {
	return []asynq.Option{
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(RetryMax),
		asynq.Timeout(TimeoutShort),
	}
}

// ParseSchedule validates a standard five field cron spec.
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return schedule, nil
}

// NextRun returns the first time after from that spec fires.
func NextRun(spec string, from time.Time) (time.Time, error) {
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.Next(from), nil
}

// retryDelay backs rate limited tasks off for one window and uses the
// asynq default for real failures.
func retryDelay(window time.Duration) asynq.RetryDelayFunc {
	return func(n int, err error, task *asynq.Task) time.Duration {
		if errors.Is(err, ErrRateLimited) {
			return window
		}
		return asynq.DefaultRetryDelayFunc(n, err, task)
	}
}

func isFailure(err error) bool {
	return !errors.Is(err, ErrRateLimited)
}
