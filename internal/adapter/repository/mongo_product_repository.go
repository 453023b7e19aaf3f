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

type mongoProductRepository struct {
	products *mongo.Collection
	reviews  *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) repository.ProductRepository {
	return &mongoProductRepository{
		products: db.Collection("products"),
		reviews:  db.Collection("reviews"),
	}
}

func (r *mongoProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := r.products.InsertOne(ctx, product); err != nil {
		return errors.Internal("Failed to create product", err)
	}
	return nil
}

func (r *mongoProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var product entity.Product
	if err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("Product", err)
		}
		return nil, errors.Internal("Failed to get product", err)
	}
	return &product, nil
}

func (r *mongoProductRepository) List(ctx context.Context, category string) ([]*entity.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	cursor, err := r.products.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, errors.Internal("Failed to query products", err)
	}

	products := []*entity.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, errors.Internal("Failed to decode products", err)
	}
	return products, nil
}

type ratingSummary struct {
	Total int `bson:"total"`
	Count int `bson:"count"`
}

// RefreshRating groups the product's reviews server side and writes the
// result. Two overlapping refreshes may land out of order; the next review
// mutation recomputes from the stored set and corrects it.
func (r *mongoProductRepository) RefreshRating(ctx context.Context, productID string) error {
	cursor, err := r.reviews.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "productId", Value: productID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return errors.Internal("Failed to aggregate reviews", err)
	}

	var summaries []ratingSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return errors.Internal("Failed to decode review summary", err)
	}

	var product entity.Product
	if len(summaries) > 0 {
		product.SetRatingAggregate(summaries[0].Total, summaries[0].Count)
	}

	result, err := r.products.UpdateOne(ctx, bson.M{"_id": productID}, bson.M{"$set": bson.M{
		"rating":      product.Rating,
		"numReviews":  product.NumReviews,
		"ratingTotal": product.RatingTotal,
		"updatedAt":   time.Now(),
	}})
	if err != nil {
		return errors.Internal("Failed to update product rating", err)
	}
	if result.MatchedCount == 0 {
		return errors.NotFound("Product", nil)
	}
	return nil
}
