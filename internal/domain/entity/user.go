package entity

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        string    `json:"id" firestore:"id" bson:"_id"`
	Email     string    `json:"email" firestore:"email" bson:"email"`
	FirstName string    `json:"firstName" firestore:"firstName" bson:"firstName"`
	LastName  string    `json:"lastName" firestore:"lastName" bson:"lastName"`
	Role      string    `json:"role" firestore:"role" bson:"role"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
