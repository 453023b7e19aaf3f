// Package testutil provides in-memory stores and recorders for use case and
// handler tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain/entity"
	"storefront/pkg/errors"
)

// Store implements every repository port over maps guarded by one mutex, with
// the same error contract as the database adapters.
type Store struct {
	mu       sync.Mutex
	last     time.Time
	orders   map[string]entity.Order
	chats    map[string]entity.Chat
	reviews  map[string]entity.Review
	products map[string]entity.Product
	users    map[string]entity.User
}

func NewStore() *Store {
	return &Store{
		orders:   make(map[string]entity.Order),
		chats:    make(map[string]entity.Chat),
		reviews:  make(map[string]entity.Review),
		products: make(map[string]entity.Product),
		users:    make(map[string]entity.User),
	}
}

// tick returns a strictly increasing timestamp so newest-first ordering is
// deterministic within a test. Callers hold mu.
func (s *Store) tick() time.Time {
	now := time.Now()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}

func (s *Store) Orders() *OrderRepo     { return &OrderRepo{s} }
func (s *Store) Chats() *ChatRepo       { return &ChatRepo{s} }
func (s *Store) Reviews() *ReviewRepo   { return &ReviewRepo{s} }
func (s *Store) Products() *ProductRepo { return &ProductRepo{s} }
func (s *Store) Users() *UserRepo       { return &UserRepo{s} }

type OrderRepo struct{ s *Store }

func (r *OrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := r.s.tick()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.s.orders[order.ID] = *order
	return nil
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, errors.NotFound("Order", nil)
	}
	return &order, nil
}

func (r *OrderRepo) Update(_ context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[order.ID]; !ok {
		return errors.NotFound("Order", nil)
	}
	order.UpdatedAt = r.s.tick()
	r.s.orders[order.ID] = *order
	return nil
}

func (r *OrderRepo) ListByUser(_ context.Context, userID string) ([]*entity.Order, error) {
	return r.list(func(o entity.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepo) ListAll(_ context.Context) ([]*entity.Order, error) {
	return r.list(func(entity.Order) bool { return true }), nil
}

func (r *OrderRepo) list(keep func(entity.Order) bool) []*entity.Order {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Order{}
	for _, o := range r.s.orders {
		if keep(o) {
			o := o
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type ChatRepo struct{ s *Store }

func (r *ChatRepo) AppendUserMessage(_ context.Context, userID string, msg entity.ChatMessage) (*entity.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var chat entity.Chat
	found := false
	for _, c := range r.s.chats {
		if c.UserID == userID {
			chat, found = c, true
			break
		}
	}
	now := r.s.tick()
	if !found {
		chat = entity.Chat{ID: uuid.New().String(), UserID: userID, IsActive: true, CreatedAt: now}
	}
	chat.Messages = append(append([]entity.ChatMessage{}, chat.Messages...), msg)
	chat.LastUpdated = now
	chat.UpdatedAt = now
	r.s.chats[chat.ID] = chat
	return &chat, nil
}

func (r *ChatRepo) AppendMessage(_ context.Context, chatID string, msg entity.ChatMessage) (*entity.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	chat, ok := r.s.chats[chatID]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	now := r.s.tick()
	chat.Messages = append(append([]entity.ChatMessage{}, chat.Messages...), msg)
	chat.LastUpdated = now
	chat.UpdatedAt = now
	r.s.chats[chatID] = chat
	return &chat, nil
}

func (r *ChatRepo) GetByID(_ context.Context, id string) (*entity.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	chat, ok := r.s.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	return &chat, nil
}

func (r *ChatRepo) GetByUserID(_ context.Context, userID string) (*entity.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.chats {
		if c.UserID == userID {
			c := c
			return &c, nil
		}
	}
	return nil, errors.NotFound("Chat", nil)
}

func (r *ChatRepo) ListActive(_ context.Context) ([]*entity.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Chat{}
	for _, c := range r.s.chats {
		if c.IsActive {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUpdated.After(out[j].LastUpdated) })
	return out, nil
}

// Deactivate marks a chat inactive; there is no API for it, tests use it to
// check ListActive filtering.
func (r *ChatRepo) Deactivate(chatID string) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	chat := r.s.chats[chatID]
	chat.IsActive = false
	r.s.chats[chatID] = chat
}

type ReviewRepo struct{ s *Store }

func (r *ReviewRepo) Create(_ context.Context, review *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reviews {
		if existing.UserID == review.UserID && existing.ProductID == review.ProductID {
			return errors.Duplicate("Product already reviewed", nil)
		}
	}
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	now := r.s.tick()
	review.CreatedAt = now
	review.UpdatedAt = now
	r.s.reviews[review.ID] = *review
	return nil
}

func (r *ReviewRepo) GetByID(_ context.Context, id string) (*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	review, ok := r.s.reviews[id]
	if !ok {
		return nil, errors.NotFound("Review", nil)
	}
	return &review, nil
}

func (r *ReviewRepo) Update(_ context.Context, review *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[review.ID]; !ok {
		return errors.NotFound("Review", nil)
	}
	review.UpdatedAt = r.s.tick()
	r.s.reviews[review.ID] = *review
	return nil
}

func (r *ReviewRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[id]; !ok {
		return errors.NotFound("Review", nil)
	}
	delete(r.s.reviews, id)
	return nil
}

func (r *ReviewRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Review, error) {
	return r.list(func(rv entity.Review) bool { return rv.ProductID == productID }), nil
}

func (r *ReviewRepo) ListByUser(_ context.Context, userID string) ([]*entity.Review, error) {
	return r.list(func(rv entity.Review) bool { return rv.UserID == userID }), nil
}

func (r *ReviewRepo) list(keep func(entity.Review) bool) []*entity.Review {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Review{}
	for _, rv := range r.s.reviews {
		if keep(rv) {
			rv := rv
			out = append(out, &rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := r.s.tick()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.s.products[product.ID] = *product
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	product, ok := r.s.products[id]
	if !ok {
		return nil, errors.NotFound("Product", nil)
	}
	return &product, nil
}

func (r *ProductRepo) List(_ context.Context, category string) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Product{}
	for _, p := range r.s.products {
		if category == "" || p.Category == category {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// RefreshRating recomputes under the store lock, like the Firestore transaction.
func (r *ProductRepo) RefreshRating(_ context.Context, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	product, ok := r.s.products[productID]
	if !ok {
		return errors.NotFound("Product", nil)
	}
	total, count := 0, 0
	for _, rv := range r.s.reviews {
		if rv.ProductID == productID {
			total += rv.Rating
			count++
		}
	}
	product.SetRatingAggregate(total, count)
	product.UpdatedAt = r.s.tick()
	r.s.products[productID] = product
	return nil
}

type UserRepo struct{ s *Store }

func (r *UserRepo) Save(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.tick()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return &user, nil
}
