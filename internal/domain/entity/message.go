package entity

import "time"

type Message struct {
	ID             string    `json:"id" firestore:"id"`
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	SenderID       string    `json:"sender_id" firestore:"senderId"`
	Body           string    `json:"body" firestore:"body"`
	// Read is flipped when the recipient observes the message; it only
	// ever transitions false -> true.
	Read      bool      `json:"read" firestore:"read"`
	// Seq breaks ordering ties between messages sharing a timestamp.
	Seq       int64     `json:"seq" firestore:"seq"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
