package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/testutil"
	"storefront/pkg/errors"
)

func newReviewUseCase(t *testing.T) (*ReviewUseCase, *testutil.Store, *entity.Product) {
	t.Helper()
	store := testutil.NewStore()
	product := &entity.Product{Name: "Kettle", Price: 30}
	require.NoError(t, store.Products().Create(context.Background(), product))
	return NewReviewUseCase(store.Reviews(), store.Products(), nil), store, product
}

func aggregate(t *testing.T, store *testutil.Store, productID string) (float64, int) {
	t.Helper()
	product, err := store.Products().GetByID(context.Background(), productID)
	require.NoError(t, err)
	return product.Rating, product.NumReviews
}

func TestAddReviewUpdatesAggregate(t *testing.T) {
	uc, store, product := newReviewUseCase(t)
	ctx := context.Background()

	_, err := uc.AddReview(ctx, "u1", CreateReviewInput{ProductID: product.ID, Rating: 5, Title: "Great"})
	require.NoError(t, err)
	_, err = uc.AddReview(ctx, "u2", CreateReviewInput{ProductID: product.ID, Rating: 2})
	require.NoError(t, err)

	rating, count := aggregate(t, store, product.ID)
	assert.Equal(t, 2, count)
	assert.InDelta(t, 3.5, rating, 1e-9)
}

func TestDuplicateReviewLeavesAggregate(t *testing.T) {
	uc, store, product := newReviewUseCase(t)
	ctx := context.Background()

	_, err := uc.AddReview(ctx, "userC", CreateReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	_, err = uc.AddReview(ctx, "userC", CreateReviewInput{ProductID: product.ID, Rating: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "DUPLICATE"))

	rating, count := aggregate(t, store, product.ID)
	assert.Equal(t, 1, count)
	assert.InDelta(t, 4.0, rating, 1e-9)
}

func TestAddReviewValidation(t *testing.T) {
	uc, _, product := newReviewUseCase(t)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := uc.AddReview(ctx, "u1", CreateReviewInput{ProductID: product.ID, Rating: rating})
		assert.True(t, errors.Is(err, "VALIDATION_ERROR"), "rating %d", rating)
	}

	_, err := uc.AddReview(ctx, "u1", CreateReviewInput{ProductID: "ghost", Rating: 3})
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestEditReviewAppliesOnlyProvidedFields(t *testing.T) {
	uc, store, product := newReviewUseCase(t)
	ctx := context.Background()

	review, err := uc.AddReview(ctx, "u1", CreateReviewInput{ProductID: product.ID, Rating: 2, Title: "Meh", Comment: "Leaks"})
	require.NoError(t, err)
	_, err = uc.AddReview(ctx, "u2", CreateReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	edited, err := uc.EditReview(ctx, "u1", review.ID, UpdateReviewInput{Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, edited.Rating)
	assert.Equal(t, "Meh", edited.Title)
	assert.Equal(t, "Leaks", edited.Comment)

	rating, count := aggregate(t, store, product.ID)
	assert.Equal(t, 2, count)
	assert.InDelta(t, 4.5, rating, 1e-9)

	edited, err = uc.EditReview(ctx, "u1", review.ID, UpdateReviewInput{Comment: "Fixed now"})
	require.NoError(t, err)
	assert.Equal(t, 5, edited.Rating)
	assert.Equal(t, "Fixed now", edited.Comment)
}

func TestEditAndDeleteRequireAuthor(t *testing.T) {
	uc, store, product := newReviewUseCase(t)
	ctx := context.Background()

	review, err := uc.AddReview(ctx, "author", CreateReviewInput{ProductID: product.ID, Rating: 3})
	require.NoError(t, err)

	_, err = uc.EditReview(ctx, "intruder", review.ID, UpdateReviewInput{Rating: 1})
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))

	err = uc.DeleteReview(ctx, "intruder", review.ID)
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))

	_, err = uc.EditReview(ctx, "author", "missing", UpdateReviewInput{Rating: 1})
	assert.True(t, errors.Is(err, "NOT_FOUND"))
	assert.True(t, errors.Is(uc.DeleteReview(ctx, "author", "missing"), "NOT_FOUND"))

	rating, count := aggregate(t, store, product.ID)
	assert.Equal(t, 1, count)
	assert.InDelta(t, 3.0, rating, 1e-9)
}

func TestDeleteLastReviewZeroesAggregate(t *testing.T) {
	uc, store, product := newReviewUseCase(t)
	ctx := context.Background()

	a, err := uc.AddReview(ctx, "u1", CreateReviewInput{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)
	b, err := uc.AddReview(ctx, "u2", CreateReviewInput{ProductID: product.ID, Rating: 1})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteReview(ctx, "u1", a.ID))
	rating, count := aggregate(t, store, product.ID)
	assert.Equal(t, 1, count)
	assert.InDelta(t, 1.0, rating, 1e-9)

	require.NoError(t, uc.DeleteReview(ctx, "u2", b.ID))
	rating, count = aggregate(t, store, product.ID)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0.0, rating)

	// the same user may review again once the old review is gone
	_, err = uc.AddReview(ctx, "u1", CreateReviewInput{ProductID: product.ID, Rating: 4})
	assert.NoError(t, err)
}

func TestAggregateMatchesMeanAfterMixedOperations(t *testing.T) {
	uc, store, product := newReviewUseCase(t)
	ctx := context.Background()

	ratings := map[string]int{}
	ids := map[string]string{}
	for i, user := range []string{"a", "b", "c", "d"} {
		r, err := uc.AddReview(ctx, user, CreateReviewInput{ProductID: product.ID, Rating: i + 1})
		require.NoError(t, err)
		ratings[user] = i + 1
		ids[user] = r.ID
	}

	_, err := uc.EditReview(ctx, "b", ids["b"], UpdateReviewInput{Rating: 5})
	require.NoError(t, err)
	ratings["b"] = 5
	require.NoError(t, uc.DeleteReview(ctx, "c", ids["c"]))
	delete(ratings, "c")

	sum := 0
	for _, r := range ratings {
		sum += r
	}
	rating, count := aggregate(t, store, product.ID)
	assert.Equal(t, len(ratings), count)
	assert.InDelta(t, float64(sum)/float64(len(ratings)), rating, 1e-9)
}

func TestListReviewsNewestFirst(t *testing.T) {
	uc, _, product := newReviewUseCase(t)
	ctx := context.Background()

	older, err := uc.AddReview(ctx, "u1", CreateReviewInput{ProductID: product.ID, Rating: 3})
	require.NoError(t, err)
	newer, err := uc.AddReview(ctx, "u2", CreateReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	list, err := uc.ListForProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	mine, err := uc.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, older.ID, mine[0].ID)
}

// barrierReviewRepo holds every GetByID caller until n callers have read, so
// their follow-up writes start from the same snapshot.
type barrierReviewRepo struct {
	repository.ReviewRepository
	readers sync.WaitGroup
}

func newBarrierReviewRepo(inner repository.ReviewRepository, n int) *barrierReviewRepo {
	r := &barrierReviewRepo{ReviewRepository: inner}
	r.readers.Add(n)
	return r
}

func (r *barrierReviewRepo) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	review, err := r.ReviewRepository.GetByID(ctx, id)
	r.readers.Done()
	r.readers.Wait()
	return review, err
}

type failingProductRepo struct {
	repository.ProductRepository
	fail bool
}

func (r *failingProductRepo) RefreshRating(ctx context.Context, productID string) error {
	if r.fail {
		return errors.Internal("store down", nil)
	}
	return r.ProductRepository.RefreshRating(ctx, productID)
}

func TestOverlappingDeletesCountOnce(t *testing.T) {
	uc, store, product := newReviewUseCase(t)
	ctx := context.Background()

	target, err := uc.AddReview(ctx, "u1", CreateReviewInput{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)
	_, err = uc.AddReview(ctx, "u2", CreateReviewInput{ProductID: product.ID, Rating: 3})
	require.NoError(t, err)

	racing := NewReviewUseCase(newBarrierReviewRepo(store.Reviews(), 2), store.Products(), nil)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = racing.DeleteReview(ctx, "u1", target.ID)
		}(i)
	}
	wg.Wait()

	succeeded, missing := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, "NOT_FOUND"):
			missing++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, missing)

	rating, count := aggregate(t, store, product.ID)
	assert.Equal(t, 1, count)
	assert.InDelta(t, 3.0, rating, 1e-9)
}

func TestOverlappingEditsMatchStoredRating(t *testing.T) {
	uc, store, product := newReviewUseCase(t)
	ctx := context.Background()

	target, err := uc.AddReview(ctx, "u1", CreateReviewInput{ProductID: product.ID, Rating: 5})
	require.NoError(t, err)
	_, err = uc.AddReview(ctx, "u2", CreateReviewInput{ProductID: product.ID, Rating: 3})
	require.NoError(t, err)

	racing := NewReviewUseCase(newBarrierReviewRepo(store.Reviews(), 2), store.Products(), nil)

	var wg sync.WaitGroup
	for _, rating := range []int{4, 2} {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			_, err := racing.EditReview(ctx, "u1", target.ID, UpdateReviewInput{Rating: rating})
			assert.NoError(t, err)
		}(rating)
	}
	wg.Wait()

	stored, err := store.Reviews().GetByID(ctx, target.ID)
	require.NoError(t, err)

	rating, count := aggregate(t, store, product.ID)
	assert.Equal(t, 2, count)
	assert.InDelta(t, float64(stored.Rating+3)/2, rating, 1e-9)
}

func TestAddReviewRollsBackWhenAggregateFails(t *testing.T) {
	_, store, product := newReviewUseCase(t)
	products := &failingProductRepo{ProductRepository: store.Products(), fail: true}
	uc := NewReviewUseCase(store.Reviews(), products, nil)
	ctx := context.Background()

	_, err := uc.AddReview(ctx, "u1", CreateReviewInput{ProductID: product.ID, Rating: 4})
	assert.True(t, errors.Is(err, "INTERNAL_ERROR"))

	reviews, err := uc.ListForProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	products.fail = false
	_, err = uc.AddReview(ctx, "u1", CreateReviewInput{ProductID: product.ID, Rating: 4})
	require.NoError(t, err)

	rating, count := aggregate(t, store, product.ID)
	assert.Equal(t, 1, count)
	assert.InDelta(t, 4.0, rating, 1e-9)
}

func TestEditAndDeleteRollBackWhenAggregateFails(t *testing.T) {
	_, store, product := newReviewUseCase(t)
	products := &failingProductRepo{ProductRepository: store.Products()}
	uc := NewReviewUseCase(store.Reviews(), products, nil)
	ctx := context.Background()

	review, err := uc.AddReview(ctx, "u1", CreateReviewInput{ProductID: product.ID, Rating: 2, Title: "Meh"})
	require.NoError(t, err)

	products.fail = true
	_, err = uc.EditReview(ctx, "u1", review.ID, UpdateReviewInput{Rating: 5, Title: "Great"})
	assert.True(t, errors.Is(err, "INTERNAL_ERROR"))

	stored, err := store.Reviews().GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Rating)
	assert.Equal(t, "Meh", stored.Title)

	err = uc.DeleteReview(ctx, "u1", review.ID)
	assert.True(t, errors.Is(err, "INTERNAL_ERROR"))

	stored, err = store.Reviews().GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Rating)

	rating, count := aggregate(t, store, product.ID)
	assert.Equal(t, 1, count)
	assert.InDelta(t, 2.0, rating, 1e-9)

	products.fail = false
	require.NoError(t, uc.DeleteReview(ctx, "u1", review.ID))
	rating, count = aggregate(t, store, product.ID)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0.0, rating)
}
