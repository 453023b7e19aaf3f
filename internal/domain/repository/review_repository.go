package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type ReviewRepository interface {
	// Create fails with a DUPLICATE error when the user already reviewed the product.
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	// Delete fails with NOT_FOUND when no review was removed.
	Delete(ctx context.Context, id string) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.Review, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Review, error)
}
