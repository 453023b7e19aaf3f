package entity

import "time"

type ChatMessage struct {
	ID        string    `json:"id" firestore:"id" bson:"id"`
	SenderID  string    `json:"sender" firestore:"senderId" bson:"senderId"`
	Content   string    `json:"content" firestore:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp" bson:"timestamp"`
}

// Chat is the support conversation between one user and the admin pool.
// There is at most one per user and its messages are append-only.
type Chat struct {
	ID          string        `json:"id" firestore:"id" bson:"_id"`
	UserID      string        `json:"user" firestore:"userId" bson:"userId"`
	Messages    []ChatMessage `json:"messages" firestore:"messages" bson:"messages"`
	IsActive    bool          `json:"isActive" firestore:"isActive" bson:"isActive"`
	LastUpdated time.Time     `json:"lastUpdated" firestore:"lastUpdated" bson:"lastUpdated"`
	CreatedAt   time.Time     `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}
