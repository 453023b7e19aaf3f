package websocket

import (
	"context"
	"encoding/json"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
	"storefront/pkg/logger"
)

// Control events accepted from clients.
const (
	MessageTypeJoin      = "join"
	MessageTypeJoinAdmin = "joinAdmin"
	MessageTypeLeave     = "leave"
	MessageTypePing      = "ping"

	MessageTypePong   = "pong"
	MessageTypeJoined = "joined"
	MessageTypeLeft   = "left"
	MessageTypeError  = "error"
)

type clientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type roomData struct {
	Room string `json:"room"`
}

// HandleClientMessage applies one control event from client.
func (h *Hub) HandleClientMessage(client *Client, raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(client, "Invalid message format")
		return
	}

	switch msg.Type {
	case MessageTypeJoin:
		h.handleJoin(client, msg.Data)
	case MessageTypeJoinAdmin:
		h.handleJoinAdmin(client)
	case MessageTypeLeave:
		h.handleLeave(client, msg.Data)
	case MessageTypePing:
		h.sendToClient(client, MessageTypePong, map[string]string{"status": "alive"})
	default:
		logger.Debug("WebSocket: unknown message type '%s' from %s", msg.Type, client.UserID)
		h.sendError(client, "Unknown message type")
	}
}

// handleJoin subscribes the client to its own user room. data is the user id,
// either as a bare string or {"room": id}; when absent the caller's id is used.
func (h *Hub) handleJoin(client *Client, data json.RawMessage) {
	room := decodeRoom(data)
	if room == "" {
		room = client.UserID
	}
	if room != client.UserID {
		h.sendError(client, "Cannot join another user's room")
		return
	}
	h.join(client, room)
}

func (h *Hub) handleJoinAdmin(client *Client) {
	if h.requireAdminRole && client.Role != entity.RoleAdmin {
		h.sendError(client, "Admin privileges required")
		return
	}
	h.join(client, service.AdminRoom)
}

func (h *Hub) handleLeave(client *Client, data json.RawMessage) {
	room := decodeRoom(data)
	if room == "" {
		h.sendError(client, "Room is required")
		return
	}
	h.Unsubscribe(client, room)
	h.sendToClient(client, MessageTypeLeft, roomData{Room: room})
}

func (h *Hub) join(client *Client, room string) {
	if !h.Subscribe(client, room) {
		return
	}
	logger.Debug("WebSocket: %s joined room %s", client.UserID, room)
	h.sendToClient(client, MessageTypeJoined, roomData{Room: room})
}

func decodeRoom(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var room string
	if err := json.Unmarshal(data, &room); err == nil {
		return room
	}
	var wrapped roomData
	if err := json.Unmarshal(data, &wrapped); err == nil {
		return wrapped.Room
	}
	return ""
}

// sendToClient queues a reply for a single client. The read lock keeps the
// queue from being closed underneath the send.
func (h *Hub) sendToClient(client *Client, event string, payload interface{}) {
	message, err := Encode(event, payload)
	if err != nil {
		logger.Error("WebSocket: failed to encode %s for %s: %v", event, client.UserID, err)
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	select {
	case client.Send <- message:
	default:
		h.metrics.RecordNotificationDropped(context.Background(), event)
		logger.LogNotificationDrop(client.UserID, event, "send queue full")
	}
}

func (h *Hub) sendError(client *Client, message string) {
	h.sendToClient(client, MessageTypeError, map[string]string{"error": message})
}
