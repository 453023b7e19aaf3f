package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
)

func SetupReviewRouter(e *echo.Echo, reviewHandler *handler.ReviewHandler, authMiddleware *middleware.AuthMiddleware) {
	reviews := e.Group("/api/reviews")

	// public
	reviews.GET("/product/:id", reviewHandler.GetProductReviews)

	reviews.POST("", reviewHandler.CreateReview, authMiddleware.Authenticate)
	reviews.GET("/user", reviewHandler.GetMyReviews, authMiddleware.Authenticate)
	reviews.PUT("/:id", reviewHandler.UpdateReview, authMiddleware.Authenticate)
	reviews.DELETE("/:id", reviewHandler.DeleteReview, authMiddleware.Authenticate)
}
