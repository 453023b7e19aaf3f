package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
	"storefront/internal/infrastructure/ratelimit"
)

// Setup mounts every route. tokenLimiter throttles the development token
// endpoint and may be nil.
func Setup(e *echo.Echo, h *handler.Handlers, authMiddleware *middleware.AuthMiddleware, tokenLimiter *ratelimit.RateLimiter) {
	SetupHealthRouter(e, h.Health)
	SetupOrderRouter(e, h.Order, authMiddleware)
	SetupChatRouter(e, h.Chat, authMiddleware)
	SetupReviewRouter(e, h.Review, authMiddleware)
	SetupProductRouter(e, h.Product, authMiddleware)
	SetupUserRouter(e, h.User, authMiddleware)
	SetupWebSocketRouter(e, h.WebSocket)
	if h.DevToken != nil {
		SetupDevRouter(e, h.DevToken, tokenLimiter)
	}
}
