package repository

import (
	"context"
	"time"

	"tsena/internal/domain/entity"
)

type ConversationRepository interface {
	// GetOrCreate atomically returns the conversation for the
	// (buyer, seller, listing) triple, creating it when absent. The
	// returned bool reports whether a new row was created. Concurrent
	// calls for the same triple must resolve to the same conversation.
	GetOrCreate(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, bool, error)
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	ListByUserID(ctx context.Context, userID string) ([]*entity.Conversation, error)
	ListByListingID(ctx context.Context, listingID string) ([]*entity.Conversation, error)
	// Touch bumps the conversation's last-activity timestamp.
	Touch(ctx context.Context, id string, at time.Time) error

	// Message log methods
	AppendMessage(ctx context.Context, message *entity.Message) error
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error)
	LatestMessage(ctx context.Context, conversationID string) (*entity.Message, error)
	// MarkMessagesRead flips read=true on every message in the
	// conversation whose sender is not readerID. Idempotent.
	MarkMessagesRead(ctx context.Context, conversationID, readerID string) error
	CountUnreadInConversation(ctx context.Context, conversationID, userID string) (int64, error)
	CountUnreadForUser(ctx context.Context, userID string) (int64, error)
}
