package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"
	"storefront/pkg/response"
)

type ReviewHandler struct {
	reviewUseCase *usecase.ReviewUseCase
}

func NewReviewHandler(reviewUseCase *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
	}
}

type createReviewRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment"`
	Title     string `json:"title"`
}

type updateReviewRequest struct {
	Rating  int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment string `json:"comment"`
	Title   string `json:"title"`
}

type reviewResponse struct {
	Message string         `json:"message"`
	Review  *entity.Review `json:"review"`
}

func (h *ReviewHandler) CreateReview(c echo.Context) error {
	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	review, err := h.reviewUseCase.AddReview(c.Request().Context(), middleware.UserID(c), usecase.CreateReviewInput{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Title:     req.Title,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, reviewResponse{Message: "Review added", Review: review})
}

func (h *ReviewHandler) GetProductReviews(c echo.Context) error {
	reviews, err := h.reviewUseCase.ListForProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reviews)
}

func (h *ReviewHandler) GetMyReviews(c echo.Context) error {
	reviews, err := h.reviewUseCase.ListForUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reviews)
}

func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	var req updateReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	review, err := h.reviewUseCase.EditReview(c.Request().Context(), middleware.UserID(c), c.Param("id"), usecase.UpdateReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
		Title:   req.Title,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, reviewResponse{Message: "Review updated", Review: review})
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	if err := h.reviewUseCase.DeleteReview(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, response.Message{Message: "Review removed"})
}
