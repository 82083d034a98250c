package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Limiter is satisfied by the redis sliding-window limiter.
type Limiter interface {
	Allow(ctx context.Context, identifier string) (bool, error)
}

// FormRateLimit throttles public form posts per client IP as resolved by the
// server's IP extractor. A nil limiter disables the check, and so does a
// limiter that cannot be reached.
func FormRateLimit(limiter Limiter, retryAfterSeconds int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter == nil {
				return next(c)
			}
			ip := c.RealIP()
			ok, err := limiter.Allow(c.Request().Context(), ip)
			if err != nil {
				log.Warn("Form rate limit unavailable: %v", err)
				return next(c)
			}
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
			}
			return next(c)
		}
	}
}
