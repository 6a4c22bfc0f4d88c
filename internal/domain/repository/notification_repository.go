package repository

import (
	"context"
	"time"

	"tsena/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error)
	// MarkRead flips read=true on a single record. Monotonic and
	// idempotent.
	MarkRead(ctx context.Context, id string) error
	// MarkAllRead flips read=true on every unread record for the user
	// as one bulk write, not N individual updates.
	MarkAllRead(ctx context.Context, userID string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
	// HasRecentUnread reports whether the user already has an unread
	// notification of the given type and link newer than `since`. Used
	// to bound notification volume per message burst.
	HasRecentUnread(ctx context.Context, userID, notificationType, link string, since time.Time) (bool, error)
}
