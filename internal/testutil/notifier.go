package testutil

import (
	"context"
	"errors"
	"sync"
)

type Notification struct {
	Room    string
	Event   string
	Payload interface{}
}

// RecordingNotifier captures everything published to it.
type RecordingNotifier struct {
	mu            sync.Mutex
	notifications []Notification
}

func (n *RecordingNotifier) Publish(_ context.Context, room, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, Notification{Room: room, Event: event, Payload: payload})
}

func (n *RecordingNotifier) All() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.notifications...)
}

// InRoom returns the notifications sent to room, oldest first.
func (n *RecordingNotifier) InRoom(room string) []Notification {
	var out []Notification
	for _, notification := range n.All() {
		if notification.Room == room {
			out = append(out, notification)
		}
	}
	return out
}

func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = nil
}

// MockTokenVerifier maps tokens to user ids.
type MockTokenVerifier struct {
	Tokens map[string]string
}

func (m *MockTokenVerifier) Verify(_ context.Context, token string) (string, error) {
	uid, ok := m.Tokens[token]
	if !ok {
		return "", errInvalidToken
	}
	return uid, nil
}

var errInvalidToken = errors.New("invalid token")
