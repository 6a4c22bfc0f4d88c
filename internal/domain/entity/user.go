package entity

import "time"

type User struct {
	ID        string    `json:"id" firestore:"id"`
	Username  string    `json:"username" firestore:"username"`
	Email     string    `json:"email" firestore:"email"`
	City      string    `json:"city,omitempty" firestore:"city,omitempty"`
	Role      string    `json:"role,omitempty" firestore:"role,omitempty"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
