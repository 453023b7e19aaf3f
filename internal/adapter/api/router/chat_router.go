package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chat := e.Group("/api/chat", authMiddleware.Authenticate)

	chat.POST("/message", chatHandler.SendMessage)
	chat.GET("/me", chatHandler.GetMyChat)

	admin := chat.Group("/admin", middleware.AdminOnly)
	admin.POST("/message", chatHandler.SendAdminMessage)
	admin.GET("/chats", chatHandler.GetActiveChats)
}
