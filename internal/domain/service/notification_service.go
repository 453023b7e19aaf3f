package service

import "context"

// AdminRoom is the room every admin dashboard subscribes to.
const AdminRoom = "admin"

// Event names published to rooms.
const (
	EventNewOrderNotification = "newOrderNotification"
	EventOrderStatusUpdate    = "orderStatusUpdate"
	EventOrderUpdate          = "orderUpdate"
	EventNewMessage           = "newMessage"
)

// Notifier delivers an event to every subscriber of a room. Delivery is
// best-effort and at-most-once; Publish never fails the caller.
type Notifier interface {
	Publish(ctx context.Context, room, event string, payload interface{})
}
