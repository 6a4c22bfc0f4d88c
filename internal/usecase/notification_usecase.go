package usecase

import (
	"context"
	"log"
	"time"

	"tsena/internal/domain/entity"
	"tsena/internal/domain/repository"
	"tsena/pkg/errors"
)

// NotificationUseCase is the outbox every triggering action publishes
// into. Records are append-only and typed so the bell dropdown, the
// inbox page and the badge all agree on exactly the same event set.
type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationUseCase(notificationRepo repository.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
	}
}

type PublishInput struct {
	RecipientID string
	Type        string
	Title       string
	Body        string
	Link        string
}

func (uc *NotificationUseCase) Publish(ctx context.Context, input PublishInput) (*entity.Notification, error) {
	if input.RecipientID == "" {
		return nil, errors.BadRequest("Notification recipient is required", nil)
	}
	if input.Type == "" {
		return nil, errors.BadRequest("Notification type is required", nil)
	}

	notification := &entity.Notification{
		UserID: input.RecipientID,
		Type:   input.Type,
		Title:  input.Title,
		Body:   input.Body,
		Link:   input.Link,
	}

	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("Publish Error: Failed to create %s notification for user %s: %v", input.Type, input.RecipientID, err)
		return nil, err
	}

	return notification, nil
}

// PublishDeduped publishes unless the recipient already has an unread
// notification of the same type and link newer than the window. Keeps
// a burst of triggers from flooding the inbox; returns whether a
// record was written.
func (uc *NotificationUseCase) PublishDeduped(ctx context.Context, input PublishInput, window time.Duration) (bool, error) {
	recent, err := uc.notificationRepo.HasRecentUnread(ctx, input.RecipientID, input.Type, input.Link, time.Now().Add(-window))
	if err != nil {
		log.Printf("PublishDeduped Error: Failed to check recent notifications for user %s: %v", input.RecipientID, err)
		return false, err
	}
	if recent {
		return false, nil
	}

	if _, err := uc.Publish(ctx, input); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *NotificationUseCase) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	notifications, total, err := uc.notificationRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		log.Printf("ListNotifications Error: Failed to list notifications for user %s: %v", userID, err)
		return nil, 0, err
	}
	return notifications, total, nil
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, notificationID string) error {
	notification, err := uc.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}

	if notification.UserID != userID {
		log.Printf("MarkRead Error: User %s is not the recipient of notification %s", userID, notificationID)
		return errors.Forbidden("User is not the recipient of this notification", nil)
	}

	return uc.notificationRepo.MarkRead(ctx, notificationID)
}

func (uc *NotificationUseCase) MarkManyRead(ctx context.Context, userID string, notificationIDs []string) error {
	for _, id := range notificationIDs {
		if err := uc.MarkRead(ctx, userID, id); err != nil {
			return err
		}
	}
	return nil
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) error {
	return uc.notificationRepo.MarkAllRead(ctx, userID)
}

// UnreadCount is recomputed from the log on every call rather than
// kept as an incrementable counter, so it can never drift.
func (uc *NotificationUseCase) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return uc.notificationRepo.CountUnread(ctx, userID)
}
