package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// List returns newest products first; an empty category matches all.
	List(ctx context.Context, category string) ([]*entity.Product, error)
	// RefreshRating recomputes rating, numReviews and the rating total from
	// the product's stored reviews and writes them back. Calling it after
	// every review mutation keeps the aggregate equal to the review set even
	// when an earlier refresh was lost.
	RefreshRating(ctx context.Context, productID string) error
}
