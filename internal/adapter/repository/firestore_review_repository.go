package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

type firestoreReviewRepository struct {
	client *firestore.Client
}

func NewFirestoreReviewRepository(client *firestore.Client) repository.ReviewRepository {
	return &firestoreReviewRepository{
		client: client,
	}
}

// reviewDocID is keyed on (user, product); Create on an existing key fails,
// which is what enforces one review per user and product.
func reviewDocID(userID, productID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("storefront:review:"+userID+":"+productID)).String()
}

func (r *firestoreReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	review.ID = reviewDocID(review.UserID, review.ProductID)

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := r.client.Collection("reviews").Doc(review.ID).Create(ctx, review)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Duplicate("Product already reviewed", err)
		}
		return errors.Internal("Failed to create review", err)
	}

	return nil
}

func (r *firestoreReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	doc, err := r.client.Collection("reviews").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Review", err)
		}
		return nil, errors.Internal("Failed to get review", err)
	}

	var review entity.Review
	if err := doc.DataTo(&review); err != nil {
		return nil, errors.Internal("Failed to parse review data", err)
	}

	return &review, nil
}

func (r *firestoreReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	review.UpdatedAt = time.Now()

	_, err := r.client.Collection("reviews").Doc(review.ID).Set(ctx, review)
	if err != nil {
		return errors.Internal("Failed to update review", err)
	}

	return nil
}

func (r *firestoreReviewRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("reviews").Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Review", err)
		}
		return errors.Internal("Failed to delete review", err)
	}

	return nil
}

func (r *firestoreReviewRepository) ListByProduct(ctx context.Context, productID string) ([]*entity.Review, error) {
	query := r.client.Collection("reviews").
		Where("productId", "==", productID).
		OrderBy("createdAt", firestore.Desc)
	return r.list(ctx, query)
}

func (r *firestoreReviewRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Review, error) {
	query := r.client.Collection("reviews").
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	return r.list(ctx, query)
}

func (r *firestoreReviewRepository) list(ctx context.Context, query firestore.Query) ([]*entity.Review, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	reviews := []*entity.Review{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate reviews", err)
		}

		var review entity.Review
		if err := doc.DataTo(&review); err != nil {
			return nil, errors.Internal("Failed to parse review data", err)
		}
		reviews = append(reviews, &review)
	}

	return reviews, nil
}
