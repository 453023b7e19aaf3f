package usecase

import "time"

// Payloads published to rooms.

type NewOrderEvent struct {
	OrderID     string  `json:"orderId"`
	UserID      string  `json:"userId"`
	TotalAmount float64 `json:"totalAmount"`
	Status      string  `json:"status"`
}

type OrderStatusEvent struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type AdminOrderEvent struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	UserID  string `json:"userId"`
}

type NewMessageEvent struct {
	ChatID    string    `json:"chatId"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	IsAdmin   bool      `json:"isAdmin,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// statusPaid is reported in events when payment is recorded. It is not an
// order status value.
const statusPaid = "paid"
