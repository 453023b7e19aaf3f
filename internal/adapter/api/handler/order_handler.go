package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"
	"storefront/pkg/response"
)

type OrderHandler struct {
	orderUseCase *usecase.OrderUseCase
}

func NewOrderHandler(orderUseCase *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
	}
}

type orderItemRequest struct {
	Product  string  `json:"product" validate:"required"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity" validate:"min=1"`
	Price    float64 `json:"price" validate:"gte=0"`
}

type createOrderRequest struct {
	Items           []orderItemRequest      `json:"items" validate:"dive"`
	ShippingAddress *entity.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
	TotalAmount     float64                 `json:"totalAmount"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	items := make([]entity.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, entity.OrderItem{
			ProductID: item.Product,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	order, err := h.orderUseCase.CreateOrder(c.Request().Context(), middleware.UserID(c), usecase.CreateOrderInput{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		TotalAmount:     req.TotalAmount,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, order)
}

func (h *OrderHandler) GetMyOrders(c echo.Context) error {
	orders, err := h.orderUseCase.ListForUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, orders)
}

func (h *OrderHandler) GetOrderByID(c echo.Context) error {
	order, err := h.orderUseCase.GetOrder(c.Request().Context(), c.Param("id"), middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}

// PayOrder stores the payment provider's result as sent by the client.
func (h *OrderHandler) PayOrder(c echo.Context) error {
	var result entity.PaymentResult
	if err := c.Bind(&result); err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.MarkPaid(c.Request().Context(), c.Param("id"), result)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}

func (h *OrderHandler) DeliverOrder(c echo.Context) error {
	order, err := h.orderUseCase.MarkDelivered(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	order, err := h.orderUseCase.SetStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}

func (h *OrderHandler) GetOrders(c echo.Context) error {
	orders, err := h.orderUseCase.ListAll(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, orders)
}
