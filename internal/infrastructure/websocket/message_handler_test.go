package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
)

func lastMessage(t *testing.T, c *Client) WSMessage {
	t.Helper()
	msgs := drain(c)
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func TestJoinOwnRoom(t *testing.T) {
	hub := NewHub()
	c := newTestClient("u1", entity.RoleUser, 8)
	hub.Register(c)

	hub.HandleClientMessage(c, []byte(`{"type":"join","data":"u1"}`))

	msg := lastMessage(t, c)
	assert.Equal(t, MessageTypeJoined, msg.Type)
	assert.Equal(t, "u1", msg.Data.(map[string]interface{})["room"])
	assert.Equal(t, 1, hub.Members("u1"))
}

func TestJoinWithoutDataUsesOwnID(t *testing.T) {
	hub := NewHub()
	c := newTestClient("u1", entity.RoleUser, 8)
	hub.Register(c)

	hub.HandleClientMessage(c, []byte(`{"type":"join"}`))

	assert.Equal(t, 1, hub.Members("u1"))
}

func TestJoinOtherUsersRoomRejected(t *testing.T) {
	hub := NewHub()
	c := newTestClient("u1", entity.RoleUser, 8)
	hub.Register(c)

	hub.HandleClientMessage(c, []byte(`{"type":"join","data":"u2"}`))

	assert.Equal(t, MessageTypeError, lastMessage(t, c).Type)
	assert.Equal(t, 0, hub.Members("u2"))
}

func TestJoinAdminRequiresRole(t *testing.T) {
	hub := NewHub(WithAdminRoleRequired(true))
	user := newTestClient("u1", entity.RoleUser, 8)
	admin := newTestClient("a1", entity.RoleAdmin, 8)
	hub.Register(user)
	hub.Register(admin)

	hub.HandleClientMessage(user, []byte(`{"type":"joinAdmin"}`))
	hub.HandleClientMessage(admin, []byte(`{"type":"joinAdmin"}`))

	assert.Equal(t, MessageTypeError, lastMessage(t, user).Type)
	assert.Equal(t, MessageTypeJoined, lastMessage(t, admin).Type)
	assert.Equal(t, 1, hub.Members(service.AdminRoom))
}

func TestJoinAdminOpenWhenNotRequired(t *testing.T) {
	hub := NewHub(WithAdminRoleRequired(false))
	user := newTestClient("u1", entity.RoleUser, 8)
	hub.Register(user)

	hub.HandleClientMessage(user, []byte(`{"type":"joinAdmin"}`))

	assert.Equal(t, 1, hub.Members(service.AdminRoom))
}

func TestLeaveRoom(t *testing.T) {
	hub := NewHub()
	c := newTestClient("u1", entity.RoleUser, 8)
	hub.Register(c)
	hub.Subscribe(c, "u1")

	hub.HandleClientMessage(c, []byte(`{"type":"leave","data":{"room":"u1"}}`))

	assert.Equal(t, MessageTypeLeft, lastMessage(t, c).Type)
	assert.Equal(t, 0, hub.Members("u1"))
}

func TestPingAndUnknown(t *testing.T) {
	hub := NewHub()
	c := newTestClient("u1", entity.RoleUser, 8)
	hub.Register(c)

	hub.HandleClientMessage(c, []byte(`{"type":"ping"}`))
	assert.Equal(t, MessageTypePong, lastMessage(t, c).Type)

	hub.HandleClientMessage(c, []byte(`{"type":"dance"}`))
	assert.Equal(t, MessageTypeError, lastMessage(t, c).Type)

	hub.HandleClientMessage(c, []byte(`not json`))
	assert.Equal(t, MessageTypeError, lastMessage(t, c).Type)
}
