package handler

import (
	"net/http"
	"strings"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	ws "storefront/internal/infrastructure/websocket"
	"storefront/pkg/logger"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	auth     *middleware.AuthMiddleware
	upgrader gorillaws.Upgrader
}

// NewWebSocketHandler accepts upgrades from allowedOrigin, or from any origin
// when it is "*". Requests without an Origin header are not browsers and pass.
func NewWebSocketHandler(hub *ws.Hub, auth *middleware.AuthMiddleware, allowedOrigin string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:  hub,
		auth: auth,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || strings.EqualFold(origin, allowedOrigin)
			},
		},
	}
}

// HandleWebSocket authenticates the token query parameter before upgrading.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		token = strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
	}

	userID, role, err := h.auth.Identify(c.Request().Context(), token)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		logger.Warn("WebSocket upgrade failed for %s: %v", userID, err)
		return nil
	}

	client := ws.NewClient(userID, role, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.hub)

	return nil
}
