package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
)

func SetupProductRouter(e *echo.Echo, productHandler *handler.ProductHandler, authMiddleware *middleware.AuthMiddleware) {
	products := e.Group("/api/products")

	products.GET("", productHandler.GetProducts)
	products.GET("/:id", productHandler.GetProductByID)

	products.POST("", productHandler.CreateProduct, authMiddleware.Authenticate, middleware.AdminOnly)
}
