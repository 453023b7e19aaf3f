package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

type mongoChatRepository struct {
	chats *mongo.Collection
}

func NewMongoChatRepository(db *mongo.Database) repository.ChatRepository {
	return &mongoChatRepository{
		chats: db.Collection("chats"),
	}
}

func (r *mongoChatRepository) AppendUserMessage(ctx context.Context, userID string, msg entity.ChatMessage) (*entity.Chat, error) {
	chat, err := r.upsertMessage(ctx, userID, msg)
	// Two first messages racing on the unique userId index: the loser retries
	// and lands on the document the winner created.
	if mongo.IsDuplicateKeyError(err) {
		chat, err = r.upsertMessage(ctx, userID, msg)
	}
	if err != nil {
		return nil, errors.Internal("Failed to append chat message", err)
	}
	return chat, nil
}

func (r *mongoChatRepository) upsertMessage(ctx context.Context, userID string, msg entity.ChatMessage) (*entity.Chat, error) {
	now := time.Now()
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"lastUpdated": now, "updatedAt": now},
		"$setOnInsert": bson.M{
			"_id":       uuid.New().String(),
			"isActive":  true,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var chat entity.Chat
	if err := r.chats.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, opts).Decode(&chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *mongoChatRepository) AppendMessage(ctx context.Context, chatID string, msg entity.ChatMessage) (*entity.Chat, error) {
	now := time.Now()
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$set":  bson.M{"lastUpdated": now, "updatedAt": now},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var chat entity.Chat
	err := r.chats.FindOneAndUpdate(ctx, bson.M{"_id": chatID}, update, opts).Decode(&chat)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, errors.Internal("Failed to append chat message", err)
	}
	return &chat, nil
}

func (r *mongoChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoChatRepository) GetByUserID(ctx context.Context, userID string) (*entity.Chat, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

func (r *mongoChatRepository) findOne(ctx context.Context, filter bson.M) (*entity.Chat, error) {
	var chat entity.Chat
	if err := r.chats.FindOne(ctx, filter).Decode(&chat); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}
	return &chat, nil
}

func (r *mongoChatRepository) ListActive(ctx context.Context) ([]*entity.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "lastUpdated", Value: -1}})
	cursor, err := r.chats.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, errors.Internal("Failed to query chats", err)
	}

	chats := []*entity.Chat{}
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, errors.Internal("Failed to decode chats", err)
	}
	return chats, nil
}
