package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/infrastructure/metrics"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

// ReviewUseCase keeps product rating aggregates in step with reviews.
// Each mutation is followed by a RefreshRating of the owning product; when
// the refresh fails the review mutation is undone.
type ReviewUseCase struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	metrics     *metrics.AppMetrics
}

func NewReviewUseCase(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	metrics *metrics.AppMetrics,
) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		metrics:     metrics,
	}
}

type CreateReviewInput struct {
	ProductID string
	Rating    int
	Comment   string
	Title     string
}

// UpdateReviewInput fields left at their zero value keep the stored value.
type UpdateReviewInput struct {
	Rating  int
	Comment string
	Title   string
}

func validRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

func (uc *ReviewUseCase) AddReview(ctx context.Context, userID string, input CreateReviewInput) (*entity.Review, error) {
	if !validRating(input.Rating) {
		return nil, errors.Validation("Rating must be between 1 and 5")
	}

	if _, err := uc.productRepo.GetByID(ctx, input.ProductID); err != nil {
		return nil, err
	}

	review := &entity.Review{
		UserID:    userID,
		ProductID: input.ProductID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		Title:     input.Title,
	}
	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := uc.productRepo.RefreshRating(ctx, review.ProductID); err != nil {
		if rbErr := uc.reviewRepo.Delete(ctx, review.ID); rbErr != nil {
			logger.Error("Review %s saved but product %s aggregate not updated, rollback failed: %v", review.ID, review.ProductID, rbErr)
		}
		return nil, err
	}

	uc.metrics.RecordReviewChange(ctx, "added")
	return review, nil
}

func (uc *ReviewUseCase) EditReview(ctx context.Context, userID, reviewID string, input UpdateReviewInput) (*entity.Review, error) {
	review, err := uc.authoredReview(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}

	if input.Rating != 0 && !validRating(input.Rating) {
		return nil, errors.Validation("Rating must be between 1 and 5")
	}

	original := *review
	if input.Rating != 0 {
		review.Rating = input.Rating
	}
	if input.Comment != "" {
		review.Comment = input.Comment
	}
	if input.Title != "" {
		review.Title = input.Title
	}

	if err := uc.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	if err := uc.productRepo.RefreshRating(ctx, review.ProductID); err != nil {
		if rbErr := uc.reviewRepo.Update(ctx, &original); rbErr != nil {
			logger.Error("Review %s updated but product %s aggregate not updated, rollback failed: %v", review.ID, review.ProductID, rbErr)
		}
		return nil, err
	}

	uc.metrics.RecordReviewChange(ctx, "updated")
	return review, nil
}

func (uc *ReviewUseCase) DeleteReview(ctx context.Context, userID, reviewID string) error {
	review, err := uc.authoredReview(ctx, userID, reviewID)
	if err != nil {
		return err
	}

	if err := uc.reviewRepo.Delete(ctx, review.ID); err != nil {
		return err
	}

	if err := uc.productRepo.RefreshRating(ctx, review.ProductID); err != nil {
		if rbErr := uc.reviewRepo.Create(ctx, review); rbErr != nil {
			logger.Error("Review %s removed but product %s aggregate not updated, rollback failed: %v", review.ID, review.ProductID, rbErr)
		}
		return err
	}

	uc.metrics.RecordReviewChange(ctx, "removed")
	return nil
}

func (uc *ReviewUseCase) authoredReview(ctx context.Context, userID, reviewID string) (*entity.Review, error) {
	review, err := uc.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, errors.Unauthorized("Not authorized", nil)
	}
	return review, nil
}

func (uc *ReviewUseCase) ListForProduct(ctx context.Context, productID string) ([]*entity.Review, error) {
	return uc.reviewRepo.ListByProduct(ctx, productID)
}

func (uc *ReviewUseCase) ListForUser(ctx context.Context, userID string) ([]*entity.Review, error) {
	return uc.reviewRepo.ListByUser(ctx, userID)
}
