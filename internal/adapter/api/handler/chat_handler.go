package handler

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/middleware"
	"storefront/internal/usecase"
	"storefront/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

// Blank content is rejected by the use case so the message matches on every path.
type sendMessageRequest struct {
	Content string `json:"content"`
}

type adminMessageRequest struct {
	ChatID  string `json:"chatId" validate:"required"`
	Content string `json:"content"`
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chatUseCase.PostUserMessage(c.Request().Context(), middleware.UserID(c), req.Content)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, chat)
}

func (h *ChatHandler) SendAdminMessage(c echo.Context) error {
	var req adminMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chatUseCase.PostAdminMessage(c.Request().Context(), middleware.UserID(c), req.ChatID, req.Content)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, chat)
}

func (h *ChatHandler) GetMyChat(c echo.Context) error {
	chat, err := h.chatUseCase.GetHistory(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *ChatHandler) GetActiveChats(c echo.Context) error {
	chats, err := h.chatUseCase.ListActiveChats(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chats)
}
