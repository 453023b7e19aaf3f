package entity

import (
	"encoding/json"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the enumerated order states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCreditCard  PaymentMethod = "credit_card"
	PaymentPayPal      PaymentMethod = "paypal"
	PaymentMobileMoney PaymentMethod = "mpesa"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentPayPal, PaymentMobileMoney:
		return true
	}
	return false
}

type OrderItem struct {
	ProductID string  `json:"product" firestore:"productId" bson:"productId"`
	Name      string  `json:"name,omitempty" firestore:"name,omitempty" bson:"name,omitempty"`
	Quantity  int     `json:"quantity" firestore:"quantity" bson:"quantity"`
	Price     float64 `json:"price" firestore:"price" bson:"price"`
}

type ShippingAddress struct {
	FirstName  string `json:"firstName" firestore:"firstName" bson:"firstName"`
	LastName   string `json:"lastName" firestore:"lastName" bson:"lastName"`
	Address    string `json:"address" firestore:"address" bson:"address"`
	City       string `json:"city" firestore:"city" bson:"city"`
	PostalCode string `json:"postalCode" firestore:"postalCode" bson:"postalCode"`
	Country    string `json:"country" firestore:"country" bson:"country"`
}

// PaymentResult is whatever the payment provider reported; it is stored verbatim.
type PaymentResult struct {
	ID           string `json:"id" firestore:"id" bson:"id"`
	Status       string `json:"status" firestore:"status" bson:"status"`
	UpdateTime   string `json:"update_time" firestore:"updateTime" bson:"updateTime"`
	EmailAddress string `json:"email_address" firestore:"emailAddress" bson:"emailAddress"`
}

// Order keeps a single canonical fulfilment state. Payment and delivery flags
// are derived from Status and the timestamps, so they cannot disagree.
type Order struct {
	ID              string          `json:"id" firestore:"id" bson:"_id"`
	UserID          string          `json:"user" firestore:"userId" bson:"userId"`
	Items           []OrderItem     `json:"items" firestore:"items" bson:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress" firestore:"shippingAddress" bson:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" firestore:"paymentMethod" bson:"paymentMethod"`
	TotalAmount     float64         `json:"totalAmount" firestore:"totalAmount" bson:"totalAmount"`
	Status          OrderStatus     `json:"status" firestore:"status" bson:"status"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty" firestore:"paymentResult,omitempty" bson:"paymentResult,omitempty"`
	PaidAt          *time.Time      `json:"paidAt" firestore:"paidAt" bson:"paidAt"`
	DeliveredAt     *time.Time      `json:"deliveredAt" firestore:"deliveredAt" bson:"deliveredAt"`
	CreatedAt       time.Time       `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

func (o *Order) IsPaid() bool {
	return o.PaidAt != nil
}

func (o *Order) IsDelivered() bool {
	return o.Status == OrderStatusDelivered && o.DeliveredAt != nil
}

func (o *Order) MarkPaid(result PaymentResult, at time.Time) {
	o.PaidAt = &at
	o.PaymentResult = &result
}

// SetStatus moves the order to status without a transition guard. Reaching
// delivered stamps DeliveredAt; payment state is never touched.
func (o *Order) SetStatus(status OrderStatus, at time.Time) {
	o.Status = status
	if status == OrderStatusDelivered {
		o.DeliveredAt = &at
	}
}

func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		IsPaid      bool `json:"isPaid"`
		IsDelivered bool `json:"isDelivered"`
	}{
		plain:       plain(o),
		IsPaid:      o.IsPaid(),
		IsDelivered: o.IsDelivered(),
	})
}
