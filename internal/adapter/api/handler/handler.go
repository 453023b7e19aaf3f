package handler

// Handlers groups the HTTP handlers mounted by the router. DevToken is nil
// outside development.
type Handlers struct {
	Order     *OrderHandler
	Chat      *ChatHandler
	Review    *ReviewHandler
	Product   *ProductHandler
	User      *UserHandler
	Health    *HealthHandler
	DevToken  *DevTokenHandler
	WebSocket *WebSocketHandler
}
