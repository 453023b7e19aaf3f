package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

type mongoOrderRepository struct {
	orders *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) repository.OrderRepository {
	return &mongoOrderRepository{
		orders: db.Collection("orders"),
	}
}

func (r *mongoOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := r.orders.InsertOne(ctx, order); err != nil {
		return errors.Internal("Failed to create order", err)
	}
	return nil
}

func (r *mongoOrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var order entity.Order
	err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("Order", err)
		}
		return nil, errors.Internal("Failed to get order", err)
	}
	return &order, nil
}

func (r *mongoOrderRepository) Update(ctx context.Context, order *entity.Order) error {
	order.UpdatedAt = time.Now()

	result, err := r.orders.ReplaceOne(ctx, bson.M{"_id": order.ID}, order)
	if err != nil {
		return errors.Internal("Failed to update order", err)
	}
	if result.MatchedCount == 0 {
		return errors.NotFound("Order", nil)
	}
	return nil
}

func (r *mongoOrderRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Order, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *mongoOrderRepository) ListAll(ctx context.Context) ([]*entity.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoOrderRepository) find(ctx context.Context, filter bson.M) ([]*entity.Order, error) {
	cursor, err := r.orders.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, errors.Internal("Failed to query orders", err)
	}

	orders := []*entity.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, errors.Internal("Failed to decode orders", err)
	}
	return orders, nil
}
