package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
)

func SetupOrderRouter(e *echo.Echo, orderHandler *handler.OrderHandler, authMiddleware *middleware.AuthMiddleware) {
	orders := e.Group("/api/orders", authMiddleware.Authenticate)

	orders.POST("", orderHandler.CreateOrder)
	orders.GET("/me", orderHandler.GetMyOrders)
	orders.GET("/:id", orderHandler.GetOrderByID)
	orders.PUT("/:id/pay", orderHandler.PayOrder)

	orders.GET("", orderHandler.GetOrders, middleware.AdminOnly)
	orders.PUT("/:id/deliver", orderHandler.DeliverOrder, middleware.AdminOnly)
	orders.PUT("/:id/status", orderHandler.UpdateOrderStatus, middleware.AdminOnly)
}
