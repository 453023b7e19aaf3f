package entity

import "time"

// Review is a product review; a user may review a given product once.
type Review struct {
	ID        string    `json:"id" firestore:"id" bson:"_id"`
	UserID    string    `json:"user" firestore:"userId" bson:"userId"`
	ProductID string    `json:"product" firestore:"productId" bson:"productId"`
	Rating    int       `json:"rating" firestore:"rating" bson:"rating"` // 1-5
	Title     string    `json:"title" firestore:"title" bson:"title"`
	Comment   string    `json:"comment" firestore:"comment" bson:"comment"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}
