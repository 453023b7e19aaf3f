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

type mongoReviewRepository struct {
	reviews *mongo.Collection
}

func NewMongoReviewRepository(db *mongo.Database) repository.ReviewRepository {
	return &mongoReviewRepository{
		reviews: db.Collection("reviews"),
	}
}

func (r *mongoReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	if _, err := r.reviews.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Duplicate("Product already reviewed", err)
		}
		return errors.Internal("Failed to create review", err)
	}
	return nil
}

func (r *mongoReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	var review entity.Review
	if err := r.reviews.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("Review", err)
		}
		return nil, errors.Internal("Failed to get review", err)
	}
	return &review, nil
}

func (r *mongoReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	review.UpdatedAt = time.Now()

	result, err := r.reviews.ReplaceOne(ctx, bson.M{"_id": review.ID}, review)
	if err != nil {
		return errors.Internal("Failed to update review", err)
	}
	if result.MatchedCount == 0 {
		return errors.NotFound("Review", nil)
	}
	return nil
}

func (r *mongoReviewRepository) Delete(ctx context.Context, id string) error {
	result, err := r.reviews.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Internal("Failed to delete review", err)
	}
	if result.DeletedCount == 0 {
		return errors.NotFound("Review", nil)
	}
	return nil
}

func (r *mongoReviewRepository) ListByProduct(ctx context.Context, productID string) ([]*entity.Review, error) {
	return r.find(ctx, bson.M{"productId": productID})
}

func (r *mongoReviewRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Review, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *mongoReviewRepository) find(ctx context.Context, filter bson.M) ([]*entity.Review, error) {
	cursor, err := r.reviews.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, errors.Internal("Failed to query reviews", err)
	}

	reviews := []*entity.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, errors.Internal("Failed to decode reviews", err)
	}
	return reviews, nil
}
