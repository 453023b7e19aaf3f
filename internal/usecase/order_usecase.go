package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/infrastructure/metrics"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

// totalTolerance is how far a client-computed total may drift from ours.
var totalTolerance = decimal.RequireFromString("0.01")

type OrderUseCase struct {
	orderRepo repository.OrderRepository
	notifier  service.Notifier
	metrics   *metrics.AppMetrics
	now       func() time.Time
}

func NewOrderUseCase(
	orderRepo repository.OrderRepository,
	notifier service.Notifier,
	metrics *metrics.AppMetrics,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo: orderRepo,
		notifier:  notifier,
		metrics:   metrics,
		now:       time.Now,
	}
}

type CreateOrderInput struct {
	Items           []entity.OrderItem
	ShippingAddress *entity.ShippingAddress
	PaymentMethod   string
	// TotalAmount is what the client displayed; zero means not supplied.
	TotalAmount float64
}

func (uc *OrderUseCase) CreateOrder(ctx context.Context, userID string, input CreateOrderInput) (*entity.Order, error) {
	if len(input.Items) == 0 {
		return nil, errors.Validation("No order items")
	}

	total := decimal.Zero
	for _, item := range input.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, errors.Validation("Every order item needs a product")
		}
		if item.Quantity < 1 {
			return nil, errors.Validation("Item quantity must be at least 1")
		}
		if item.Price < 0 {
			return nil, errors.Validation("Item price cannot be negative")
		}
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	total = total.Round(2)

	if err := validateShippingAddress(input.ShippingAddress); err != nil {
		return nil, err
	}

	method := entity.PaymentMethod(input.PaymentMethod)
	if !method.Valid() {
		return nil, errors.Validation("Unsupported payment method")
	}

	if input.TotalAmount != 0 {
		claimed := decimal.NewFromFloat(input.TotalAmount)
		if claimed.Sub(total).Abs().GreaterThan(totalTolerance) {
			return nil, errors.Validation("Total amount does not match order items")
		}
	}

	order := &entity.Order{
		UserID:          userID,
		Items:           input.Items,
		ShippingAddress: *input.ShippingAddress,
		PaymentMethod:   method,
		TotalAmount:     total.InexactFloat64(),
		Status:          entity.OrderStatusPending,
	}

	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	logger.Info("Order %s created by %s for %s", order.ID, userID, total.StringFixed(2))
	uc.metrics.RecordOrderCreated(ctx, string(order.PaymentMethod), order.TotalAmount)

	uc.notifier.Publish(ctx, service.AdminRoom, service.EventNewOrderNotification, NewOrderEvent{
		OrderID:     order.ID,
		UserID:      userID,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
	})

	return order, nil
}

func validateShippingAddress(addr *entity.ShippingAddress) error {
	if addr == nil {
		return errors.Validation("Shipping address is required")
	}
	fields := []struct{ name, value string }{
		{"address", addr.Address},
		{"city", addr.City},
		{"postalCode", addr.PostalCode},
		{"country", addr.Country},
	}
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			return errors.Validation("Shipping " + field.name + " is required")
		}
	}
	return nil
}

// MarkPaid records the provider's result. The fulfilment status is not touched.
func (uc *OrderUseCase) MarkPaid(ctx context.Context, orderID string, result entity.PaymentResult) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.MarkPaid(result, uc.now())
	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	uc.metrics.RecordOrderStatusChange(ctx, statusPaid)
	uc.notifier.Publish(ctx, order.UserID, service.EventOrderStatusUpdate, OrderStatusEvent{
		OrderID: order.ID,
		Status:  statusPaid,
	})
	uc.notifier.Publish(ctx, service.AdminRoom, service.EventOrderUpdate, AdminOrderEvent{
		OrderID: order.ID,
		Status:  statusPaid,
		UserID:  order.UserID,
	})

	return order, nil
}

func (uc *OrderUseCase) MarkDelivered(ctx context.Context, orderID string) (*entity.Order, error) {
	return uc.transition(ctx, orderID, entity.OrderStatusDelivered)
}

// SetStatus moves an order to any enumerated status.
func (uc *OrderUseCase) SetStatus(ctx context.Context, orderID, status string) (*entity.Order, error) {
	next := entity.OrderStatus(status)
	if !next.Valid() {
		return nil, errors.Validation("Invalid order status")
	}
	return uc.transition(ctx, orderID, next)
}

func (uc *OrderUseCase) transition(ctx context.Context, orderID string, status entity.OrderStatus) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.SetStatus(status, uc.now())
	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	logger.Info("Order %s moved to %s", order.ID, status)
	uc.metrics.RecordOrderStatusChange(ctx, string(status))
	uc.notifier.Publish(ctx, order.UserID, service.EventOrderStatusUpdate, OrderStatusEvent{
		OrderID: order.ID,
		Status:  string(status),
	})

	return order, nil
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, orderID, requesterID string, isAdmin bool) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != requesterID && !isAdmin {
		return nil, errors.Forbidden("Not authorized to view this order", nil)
	}

	return order, nil
}

func (uc *OrderUseCase) ListForUser(ctx context.Context, userID string) ([]*entity.Order, error) {
	return uc.orderRepo.ListByUser(ctx, userID)
}

func (uc *OrderUseCase) ListAll(ctx context.Context) ([]*entity.Order, error) {
	return uc.orderRepo.ListAll(ctx)
}
