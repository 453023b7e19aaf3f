package repository

import (
	"context"

	"storefront/internal/domain/entity"
)

type ChatRepository interface {
	// AppendUserMessage appends to the user's chat, creating it first when
	// the user has none. Creation and append happen as one store operation so
	// concurrent first messages never produce two chats for a user.
	AppendUserMessage(ctx context.Context, userID string, msg entity.ChatMessage) (*entity.Chat, error)
	// AppendMessage appends to an existing chat and returns the updated chat.
	AppendMessage(ctx context.Context, chatID string, msg entity.ChatMessage) (*entity.Chat, error)
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	GetByUserID(ctx context.Context, userID string) (*entity.Chat, error)
	ListActive(ctx context.Context) ([]*entity.Chat, error)
}
