package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/infrastructure/metrics"
	"storefront/internal/infrastructure/ratelimit"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	notifier    service.Notifier
	rateLimiter *ratelimit.RateLimiter
	metrics     *metrics.AppMetrics
	now         func() time.Time
}

// NewChatUseCase builds the support chat; rateLimiter may be nil to disable throttling.
func NewChatUseCase(
	chatRepo repository.ChatRepository,
	notifier service.Notifier,
	rateLimiter *ratelimit.RateLimiter,
	metrics *metrics.AppMetrics,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		notifier:    notifier,
		rateLimiter: rateLimiter,
		metrics:     metrics,
		now:         time.Now,
	}
}

func (uc *ChatUseCase) checkRateLimit(senderID string) error {
	if uc.rateLimiter == nil {
		return nil
	}
	allowed, wait := uc.rateLimiter.Allow(senderID, ratelimit.ActionSendMessage)
	if !allowed {
		logger.Warn("Chat rate limit hit by %s, retry in %v", senderID, wait)
		return errors.TooManyRequests(fmt.Sprintf("Too many messages, try again in %d seconds", int(wait.Seconds())+1))
	}
	return nil
}

func (uc *ChatUseCase) newMessage(senderID, content string) entity.ChatMessage {
	return entity.ChatMessage{
		ID:        uuid.New().String(),
		SenderID:  senderID,
		Content:   content,
		Timestamp: uc.now(),
	}
}

// PostUserMessage appends to the user's chat, opening it on the first message.
func (uc *ChatUseCase) PostUserMessage(ctx context.Context, userID, content string) (*entity.Chat, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.Validation("Message content is required")
	}
	if err := uc.checkRateLimit(userID); err != nil {
		return nil, err
	}

	msg := uc.newMessage(userID, content)
	chat, err := uc.chatRepo.AppendUserMessage(ctx, userID, msg)
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordChatMessage(ctx, false)
	uc.notifier.Publish(ctx, service.AdminRoom, service.EventNewMessage, NewMessageEvent{
		ChatID:    chat.ID,
		UserID:    userID,
		Message:   content,
		Timestamp: msg.Timestamp,
	})

	return chat, nil
}

// PostAdminMessage replies into an existing chat. Admin replies are not
// throttled.
func (uc *ChatUseCase) PostAdminMessage(ctx context.Context, adminID, chatID, content string) (*entity.Chat, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.Validation("Message content is required")
	}
	if strings.TrimSpace(chatID) == "" {
		return nil, errors.Validation("Chat ID is required")
	}

	msg := uc.newMessage(adminID, content)
	chat, err := uc.chatRepo.AppendMessage(ctx, chatID, msg)
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordChatMessage(ctx, true)
	uc.notifier.Publish(ctx, chat.UserID, service.EventNewMessage, NewMessageEvent{
		ChatID:    chat.ID,
		UserID:    adminID,
		Message:   content,
		IsAdmin:   true,
		Timestamp: msg.Timestamp,
	})

	return chat, nil
}

// GetHistory returns the user's chat, or an empty one when none was opened yet.
func (uc *ChatUseCase) GetHistory(ctx context.Context, userID string) (*entity.Chat, error) {
	chat, err := uc.chatRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return &entity.Chat{UserID: userID, Messages: []entity.ChatMessage{}}, nil
		}
		return nil, err
	}
	if chat.Messages == nil {
		chat.Messages = []entity.ChatMessage{}
	}
	return chat, nil
}

func (uc *ChatUseCase) ListActiveChats(ctx context.Context) ([]*entity.Chat, error) {
	return uc.chatRepo.ListActive(ctx)
}
