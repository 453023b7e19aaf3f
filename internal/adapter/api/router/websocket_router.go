package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
)

// SetupWebSocketRouter mounts /ws without auth middleware; the handler
// authenticates the token query parameter itself.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWebSocket)
}
