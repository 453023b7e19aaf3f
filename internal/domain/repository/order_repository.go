package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	// ListByUser and ListAll return newest orders first.
	ListByUser(ctx context.Context, userID string) ([]*entity.Order, error)
	ListAll(ctx context.Context) ([]*entity.Order, error)
}
