package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimit struct {
	Window time.Duration // e.g., 1 minute, 1 hour
	Max    int           // max events per window
}

type Config struct {
	Name      string
	RateLimit RateLimit
}

// Limiter is a sliding-window log kept in a redis sorted set per identifier.
// It backs both the email send rate and the public form throttle.
type Limiter struct {
	redis  *redis.Client
	config Config
}

func NewLimiter(client *redis.Client, config Config) *Limiter {
	return &Limiter{
		redis:  client,
		config: config,
	}
}

// slidingWindow trims the log, and records the event only when it fits.
var slidingWindow = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
local count = redis.call("ZCARD", KEYS[1])
if count >= tonumber(ARGV[3]) then
	return 0
end
redis.call("ZADD", KEYS[1], ARGV[2], ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[5])
return 1
`)

// Key is the redis key of one identifier's window.
func (l *Limiter) Key(identifier string) string {
	return fmt.Sprintf("rate_limit:%s:%s", l.config.Name, identifier)
}

// Allow records an event for identifier and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, identifier string) (bool, error) {
	if l.config.RateLimit.Max <= 0 {
		return true, nil
	}
	now := time.Now().UnixMilli()
	windowStart := now - l.config.RateLimit.Window.Milliseconds()

	allowed, err := slidingWindow.Run(ctx, l.redis, []string{l.Key(identifier)},
		windowStart,
		now,
		l.config.RateLimit.Max,
		uuid.NewString(),
		(l.config.RateLimit.Window * 2).Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis rate limit: %w", err)
	}
	return allowed == 1, nil
}
