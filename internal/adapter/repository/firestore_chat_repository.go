package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

// chatDocID derives the chat id from the owner, so a user maps to exactly one document.
func chatDocID(userID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("storefront:chat:"+userID)).String()
}

func (r *firestoreChatRepository) AppendUserMessage(ctx context.Context, userID string, msg entity.ChatMessage) (*entity.Chat, error) {
	ref := r.client.Collection("chats").Doc(chatDocID(userID))

	var chat entity.Chat
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}

		now := time.Now()
		if err != nil {
			chat = entity.Chat{
				ID:        ref.ID,
				UserID:    userID,
				IsActive:  true,
				CreatedAt: now,
			}
		} else if err := doc.DataTo(&chat); err != nil {
			return err
		}

		chat.Messages = append(chat.Messages, msg)
		chat.LastUpdated = now
		chat.UpdatedAt = now
		return tx.Set(ref, &chat)
	})
	if err != nil {
		return nil, errors.Internal("Failed to append chat message", err)
	}

	return &chat, nil
}

func (r *firestoreChatRepository) AppendMessage(ctx context.Context, chatID string, msg entity.ChatMessage) (*entity.Chat, error) {
	ref := r.client.Collection("chats").Doc(chatID)

	var chat entity.Chat
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if err := doc.DataTo(&chat); err != nil {
			return err
		}

		now := time.Now()
		chat.Messages = append(chat.Messages, msg)
		chat.LastUpdated = now
		chat.UpdatedAt = now
		return tx.Update(ref, []firestore.Update{
			{Path: "messages", Value: firestore.ArrayUnion(msg)},
			{Path: "lastUpdated", Value: now},
			{Path: "updatedAt", Value: now},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, errors.Internal("Failed to append chat message", err)
	}

	return &chat, nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	doc, err := r.client.Collection("chats").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}

	return &chat, nil
}

func (r *firestoreChatRepository) GetByUserID(ctx context.Context, userID string) (*entity.Chat, error) {
	return r.GetByID(ctx, chatDocID(userID))
}

func (r *firestoreChatRepository) ListActive(ctx context.Context) ([]*entity.Chat, error) {
	iter := r.client.Collection("chats").
		Where("isActive", "==", true).
		OrderBy("lastUpdated", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	chats := []*entity.Chat{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate chats", err)
		}

		var chat entity.Chat
		if err := doc.DataTo(&chat); err != nil {
			return nil, errors.Internal("Failed to parse chat data", err)
		}
		chats = append(chats, &chat)
	}

	return chats, nil
}
