package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapter/api"
	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
	"storefront/internal/infrastructure/auth"
	"storefront/internal/infrastructure/ratelimit"
	ws "storefront/internal/infrastructure/websocket"
	"storefront/internal/testutil"
	"storefront/internal/usecase"
	"storefront/pkg/response"
)

const (
	userAToken = "token-a"
	userBToken = "token-b"
	adminToken = "token-admin"
	jwtSecret  = "test-secret"
)

type testApp struct {
	e     *echo.Echo
	store *testutil.Store
	hub   *ws.Hub
}

func newTestApp(t *testing.T, verifier service.TokenVerifier) *testApp {
	t.Helper()

	store := testutil.NewStore()
	require.NoError(t, store.Users().Save(context.Background(), &entity.User{ID: "admin-1", Role: entity.RoleAdmin}))

	if verifier == nil {
		verifier = &testutil.MockTokenVerifier{Tokens: map[string]string{
			userAToken: "userA",
			userBToken: "userB",
			adminToken: "admin-1",
		}}
	}

	hub := ws.NewHub()
	userUseCase := usecase.NewUserUseCase(store.Users())
	authMiddleware := middleware.NewAuthMiddleware(verifier, userUseCase)

	handlers := &handler.Handlers{
		Order:     handler.NewOrderHandler(usecase.NewOrderUseCase(store.Orders(), hub, nil)),
		Chat:      handler.NewChatHandler(usecase.NewChatUseCase(store.Chats(), hub, nil, nil)),
		Review:    handler.NewReviewHandler(usecase.NewReviewUseCase(store.Reviews(), store.Products(), nil)),
		Product:   handler.NewProductHandler(usecase.NewProductUseCase(store.Products())),
		User:      handler.NewUserHandler(userUseCase),
		Health:    handler.NewHealthHandler("test"),
		DevToken:  handler.NewDevTokenHandler(auth.NewJWTIssuer(jwtSecret, time.Hour), userUseCase),
		WebSocket: handler.NewWebSocketHandler(hub, authMiddleware, "*"),
	}

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler
	Setup(e, handlers, authMiddleware, nil)

	return &testApp{e: e, store: store, hub: hub}
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

func orderBody(quantity int, price float64) map[string]interface{} {
	return map[string]interface{}{
		"items": []map[string]interface{}{
			{"product": "P", "name": "Widget", "quantity": quantity, "price": price},
		},
		"shippingAddress": map[string]string{
			"address": "1 Main St", "city": "Nairobi", "postalCode": "00100", "country": "KE",
		},
		"paymentMethod": "mpesa",
	}
}

type orderView struct {
	ID          string  `json:"id"`
	User        string  `json:"user"`
	TotalAmount float64 `json:"totalAmount"`
	Status      string  `json:"status"`
	IsPaid      bool    `json:"isPaid"`
	IsDelivered bool    `json:"isDelivered"`
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t, nil)

	code, env := app.do(t, http.MethodPost, "/api/orders", userAToken, orderBody(2, 10))
	require.Equal(t, http.StatusCreated, code)
	var order orderView
	decode(t, env.Data, &order)
	assert.Equal(t, 20.0, order.TotalAmount)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "userA", order.User)
	assert.False(t, order.IsPaid)
	assert.False(t, order.IsDelivered)

	code, env = app.do(t, http.MethodGet, "/api/orders/"+order.ID, userBToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, _ = app.do(t, http.MethodGet, "/api/orders/"+order.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = app.do(t, http.MethodPut, "/api/orders/"+order.ID+"/deliver", userAToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = app.do(t, http.MethodPut, "/api/orders/"+order.ID+"/deliver", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data, &order)
	assert.True(t, order.IsDelivered)
	assert.Equal(t, "delivered", order.Status)

	code, env = app.do(t, http.MethodPut, "/api/orders/"+order.ID+"/pay", userAToken, map[string]string{
		"id": "pay-1", "status": "COMPLETED", "update_time": "2024-01-01T00:00:00Z", "email_address": "a@b.c",
	})
	require.Equal(t, http.StatusOK, code)
	decode(t, env.Data, &order)
	assert.True(t, order.IsPaid)
	assert.Equal(t, "delivered", order.Status)

	code, env = app.do(t, http.MethodGet, "/api/orders/me", userAToken, nil)
	require.Equal(t, http.StatusOK, code)
	var mine []orderView
	decode(t, env.Data, &mine)
	assert.Len(t, mine, 1)

	code, _ = app.do(t, http.MethodGet, "/api/orders", userAToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = app.do(t, http.MethodGet, "/api/orders", adminToken, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestOrderErrors(t *testing.T) {
	app := newTestApp(t, nil)

	code, env := app.do(t, http.MethodPost, "/api/orders", "", orderBody(1, 1))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, _ = app.do(t, http.MethodPost, "/api/orders", "bogus", orderBody(1, 1))
	assert.Equal(t, http.StatusUnauthorized, code)

	empty := orderBody(1, 1)
	empty["items"] = []interface{}{}
	code, env = app.do(t, http.MethodPost, "/api/orders", userAToken, empty)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = app.do(t, http.MethodPost, "/api/orders", userAToken, orderBody(0, 1))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, _ = app.do(t, http.MethodGet, "/api/orders/missing", userAToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = app.do(t, http.MethodPut, "/api/orders/missing/status", adminToken, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestReviewFlowOverHTTP(t *testing.T) {
	app := newTestApp(t, nil)

	code, env := app.do(t, http.MethodPost, "/api/products", userAToken, map[string]interface{}{"name": "Lamp", "price": 12})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = app.do(t, http.MethodPost, "/api/products", adminToken, map[string]interface{}{"name": "Lamp", "price": 12})
	require.Equal(t, http.StatusCreated, code)
	var product struct {
		ID         string  `json:"id"`
		Rating     float64 `json:"rating"`
		NumReviews int     `json:"numReviews"`
	}
	decode(t, env.Data, &product)

	code, env = app.do(t, http.MethodPost, "/api/reviews", userAToken, map[string]interface{}{
		"productId": product.ID, "rating": 4, "title": "Nice", "comment": "Bright",
	})
	require.Equal(t, http.StatusCreated, code)
	var added struct {
		Message string `json:"message"`
		Review  struct {
			ID string `json:"id"`
		} `json:"review"`
	}
	decode(t, env.Data, &added)
	assert.Equal(t, "Review added", added.Message)

	code, env = app.do(t, http.MethodPost, "/api/reviews", userAToken, map[string]interface{}{
		"productId": product.ID, "rating": 1,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "DUPLICATE", env.Error.Code)

	code, env = app.do(t, http.MethodPost, "/api/reviews", userBToken, map[string]interface{}{
		"productId": product.ID, "rating": 9,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = app.do(t, http.MethodGet, "/api/products?limit=5", "", nil)
	require.Equal(t, http.StatusOK, code)
	var catalog struct {
		Products []map[string]interface{} `json:"products"`
		Page     int                      `json:"page"`
		Pages    int                      `json:"pages"`
		Count    int                      `json:"count"`
	}
	decode(t, env.Data, &catalog)
	assert.Len(t, catalog.Products, 1)
	assert.Equal(t, 1, catalog.Page)
	assert.Equal(t, 1, catalog.Pages)
	assert.Equal(t, 1, catalog.Count)

	_, env = app.do(t, http.MethodGet, "/api/products/"+product.ID, "", nil)
	decode(t, env.Data, &product)
	assert.Equal(t, 1, product.NumReviews)
	assert.Equal(t, 4.0, product.Rating)

	code, env = app.do(t, http.MethodPut, "/api/reviews/"+added.Review.ID, userBToken, map[string]interface{}{"rating": 1})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Not authorized", env.Error.Message)

	code, env = app.do(t, http.MethodPut, "/api/reviews/"+added.Review.ID, userAToken, map[string]interface{}{"rating": 2})
	require.Equal(t, http.StatusOK, code)
	var updated struct {
		Message string `json:"message"`
	}
	decode(t, env.Data, &updated)
	assert.Equal(t, "Review updated", updated.Message)

	code, env = app.do(t, http.MethodGet, "/api/reviews/user", userAToken, nil)
	require.Equal(t, http.StatusOK, code)
	var mine []map[string]interface{}
	decode(t, env.Data, &mine)
	assert.Len(t, mine, 1)

	code, env = app.do(t, http.MethodDelete, "/api/reviews/"+added.Review.ID, userAToken, nil)
	require.Equal(t, http.StatusOK, code)
	var removed response.Message
	decode(t, env.Data, &removed)
	assert.Equal(t, "Review removed", removed.Message)

	_, env = app.do(t, http.MethodGet, "/api/products/"+product.ID, "", nil)
	decode(t, env.Data, &product)
	assert.Equal(t, 0, product.NumReviews)
	assert.Equal(t, 0.0, product.Rating)

	code, env = app.do(t, http.MethodGet, "/api/reviews/product/"+product.ID, "", nil)
	require.Equal(t, http.StatusOK, code)
	var list []map[string]interface{}
	decode(t, env.Data, &list)
	assert.Empty(t, list)
}

func TestChatOverHTTP(t *testing.T) {
	app := newTestApp(t, nil)

	code, env := app.do(t, http.MethodGet, "/api/chat/me", userBToken, nil)
	require.Equal(t, http.StatusOK, code)
	var chat struct {
		ID       string `json:"id"`
		Messages []struct {
			Content string `json:"content"`
			Sender  string `json:"sender"`
		} `json:"messages"`
	}
	decode(t, env.Data, &chat)
	assert.NotNil(t, chat.Messages)
	assert.Empty(t, chat.Messages)

	code, env = app.do(t, http.MethodPost, "/api/chat/message", userBToken, map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, code)
	decode(t, env.Data, &chat)
	firstID := chat.ID

	code, env = app.do(t, http.MethodPost, "/api/chat/message", userBToken, map[string]string{"content": "still there?"})
	require.Equal(t, http.StatusCreated, code)
	decode(t, env.Data, &chat)
	assert.Equal(t, firstID, chat.ID)
	assert.Len(t, chat.Messages, 2)

	code, env = app.do(t, http.MethodPost, "/api/chat/message", userBToken, map[string]string{"content": "  "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, _ = app.do(t, http.MethodGet, "/api/chat/admin/chats", userBToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = app.do(t, http.MethodGet, "/api/chat/admin/chats", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	var chats []map[string]interface{}
	decode(t, env.Data, &chats)
	assert.Len(t, chats, 1)

	code, env = app.do(t, http.MethodPost, "/api/chat/admin/message", adminToken, map[string]string{"chatId": firstID, "content": "hi!"})
	require.Equal(t, http.StatusCreated, code)
	decode(t, env.Data, &chat)
	require.Len(t, chat.Messages, 3)
	assert.Equal(t, "admin-1", chat.Messages[2].Sender)

	code, _ = app.do(t, http.MethodPost, "/api/chat/admin/message", adminToken, map[string]string{"chatId": "nope", "content": "hi"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProfileAndHealth(t *testing.T) {
	app := newTestApp(t, nil)

	code, env := app.do(t, http.MethodGet, "/api/users/profile", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	var user entity.User
	decode(t, env.Data, &user)
	assert.Equal(t, entity.RoleAdmin, user.Role)

	code, _ = app.do(t, http.MethodGet, "/api/users/profile", userAToken, nil)
	assert.Equal(t, http.StatusNotFound, code)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestDevTokenRoundTrip(t *testing.T) {
	app := newTestApp(t, auth.NewJWTVerifier(jwtSecret))

	code, env := app.do(t, http.MethodPost, "/v1/dev/token", "", map[string]string{"id": "ops", "role": "admin", "email": "ops@example.com"})
	require.Equal(t, http.StatusOK, code)
	var issued struct {
		Token string `json:"token"`
	}
	decode(t, env.Data, &issued)
	require.NotEmpty(t, issued.Token)

	code, _ = app.do(t, http.MethodGet, "/api/orders", issued.Token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = app.do(t, http.MethodPost, "/v1/dev/token", "", map[string]string{"id": "x", "role": "root"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestDevTokenRateLimit(t *testing.T) {
	app := newTestApp(t, auth.NewJWTVerifier(jwtSecret))
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler
	limiter := ratelimit.NewRateLimiter(map[string]ratelimit.Limit{
		ratelimit.ActionIssueToken: {PerMinute: 1, Burst: 1},
	}, ratelimit.Limit{})
	SetupDevRouter(e, handler.NewDevTokenHandler(auth.NewJWTIssuer(jwtSecret, time.Hour), usecase.NewUserUseCase(app.store.Users())), limiter)
	app.e = e

	code, _ := app.do(t, http.MethodPost, "/v1/dev/token", "", map[string]string{"id": "u"})
	assert.Equal(t, http.StatusOK, code)

	code, env := app.do(t, http.MethodPost, "/v1/dev/token", "", map[string]string{"id": "u"})
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error.Code)
}

func dialWS(t *testing.T, server *httptest.Server, token string) (*gorillaws.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	return gorillaws.DefaultDialer.Dial(url, nil)
}

func readWS(t *testing.T, conn *gorillaws.Conn) ws.WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ws.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketNotifications(t *testing.T) {
	app := newTestApp(t, nil)
	server := httptest.NewServer(app.e)
	t.Cleanup(server.Close)

	_, resp, err := dialWS(t, server, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dialWS(t, server, "bogus")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	admin, _, err := dialWS(t, server, adminToken)
	require.NoError(t, err)
	t.Cleanup(func() { admin.Close() })
	require.NoError(t, admin.WriteJSON(map[string]string{"type": "joinAdmin"}))
	assert.Equal(t, ws.MessageTypeJoined, readWS(t, admin).Type)

	user, _, err := dialWS(t, server, userAToken)
	require.NoError(t, err)
	t.Cleanup(func() { user.Close() })
	require.NoError(t, user.WriteJSON(map[string]string{"type": "joinAdmin"}))
	assert.Equal(t, ws.MessageTypeError, readWS(t, user).Type)
	require.NoError(t, user.WriteJSON(map[string]string{"type": "join", "data": "userA"}))
	assert.Equal(t, ws.MessageTypeJoined, readWS(t, user).Type)

	code, env := app.do(t, http.MethodPost, "/api/orders", userAToken, orderBody(2, 10))
	require.Equal(t, http.StatusCreated, code)
	var order orderView
	decode(t, env.Data, &order)

	msg := readWS(t, admin)
	assert.Equal(t, service.EventNewOrderNotification, msg.Type)
	data := msg.Data.(map[string]interface{})
	assert.Equal(t, order.ID, data["orderId"])
	assert.Equal(t, "userA", data["userId"])
	assert.Equal(t, 20.0, data["totalAmount"])

	code, _ = app.do(t, http.MethodPut, "/api/orders/"+order.ID+"/deliver", adminToken, nil)
	require.Equal(t, http.StatusOK, code)

	msg = readWS(t, user)
	assert.Equal(t, service.EventOrderStatusUpdate, msg.Type)
	data = msg.Data.(map[string]interface{})
	assert.Equal(t, order.ID, data["orderId"])
	assert.Equal(t, "delivered", data["status"])
}
