package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
	"storefront/internal/infrastructure/ratelimit"
)

// SetupDevRouter is only called in development.
func SetupDevRouter(e *echo.Echo, devTokenHandler *handler.DevTokenHandler, limiter *ratelimit.RateLimiter) {
	var mws []echo.MiddlewareFunc
	if limiter != nil {
		mws = append(mws, middleware.RateLimit(limiter, ratelimit.ActionIssueToken))
	}

	e.POST("/v1/dev/token", devTokenHandler.IssueToken, mws...)
}
