package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"storefront/internal/infrastructure/ratelimit"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

// RateLimit throttles action per client IP.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			allowed, wait := limiter.Allow(ip, action)
			if !allowed {
				logger.Warn("RATE LIMIT: %s blocked from %s for %v", action, ip, wait)
				return errors.TooManyRequests(fmt.Sprintf("Rate limit exceeded, retry in %d seconds", int(wait.Seconds())+1))
			}
			return next(c)
		}
	}
}
