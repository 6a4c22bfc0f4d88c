package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsena/internal/adapter/repository"
	"tsena/internal/domain/entity"
	"tsena/internal/usecase"
	"tsena/pkg/errors"
)

func newNotificationUseCase() *usecase.NotificationUseCase {
	return usecase.NewNotificationUseCase(repository.NewMemoryStore().Notifications())
}

func TestPublishAndList(t *testing.T) {
	uc := newNotificationUseCase()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := uc.Publish(ctx, usecase.PublishInput{
			RecipientID: "user-1",
			Type:        entity.NotificationFavorited,
			Title:       "New favorite",
			Body:        fmt.Sprintf("listing %d", i),
			Link:        fmt.Sprintf("/listings/%d", i),
		})
		require.NoError(t, err)
	}
	_, err := uc.Publish(ctx, usecase.PublishInput{
		RecipientID: "user-2",
		Type:        entity.NotificationFavorited,
		Title:       "New favorite",
		Body:        "someone else's",
		Link:        "/listings/x",
	})
	require.NoError(t, err)

	notifications, total, err := uc.ListNotifications(ctx, "user-1", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, notifications, 3)

	// Only the recipient's rows are visible.
	for _, n := range notifications {
		assert.Equal(t, "user-1", n.UserID)
	}

	count, err := uc.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestMarkReadRequiresOwnership(t *testing.T) {
	uc := newNotificationUseCase()
	ctx := context.Background()

	n, err := uc.Publish(ctx, usecase.PublishInput{
		RecipientID: "user-1",
		Type:        entity.NotificationReportOutcome,
		Title:       "Report update",
		Body:        "resolved",
		Link:        "/listings/l1",
	})
	require.NoError(t, err)

	err = uc.MarkRead(ctx, "user-2", n.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	require.NoError(t, uc.MarkRead(ctx, "user-1", n.ID))

	count, err := uc.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Marking read twice is a no-op, never an error.
	require.NoError(t, uc.MarkRead(ctx, "user-1", n.ID))
}

func TestMarkAllRead(t *testing.T) {
	uc := newNotificationUseCase()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := uc.Publish(ctx, usecase.PublishInput{
			RecipientID: "user-1",
			Type:        entity.NotificationNewMessage,
			Title:       "someone",
			Body:        "hello",
			Link:        fmt.Sprintf("/chat/%d", i),
		})
		require.NoError(t, err)
	}

	require.NoError(t, uc.MarkAllRead(ctx, "user-1"))

	count, err := uc.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	notifications, _, err := uc.ListNotifications(ctx, "user-1", 20, 0)
	require.NoError(t, err)
	for _, n := range notifications {
		assert.True(t, n.Read)
	}
}

func TestPublishDedupedWindow(t *testing.T) {
	uc := newNotificationUseCase()
	ctx := context.Background()

	input := usecase.PublishInput{
		RecipientID: "user-1",
		Type:        entity.NotificationNewMessage,
		Title:       "sara",
		Body:        "hi",
		Link:        "/chat/c1",
	}
	window := 5 * time.Minute

	published, err := uc.PublishDeduped(ctx, input, window)
	require.NoError(t, err)
	assert.True(t, published)

	// Same recipient, type and link while the first is still unread:
	// suppressed.
	published, err = uc.PublishDeduped(ctx, input, window)
	require.NoError(t, err)
	assert.False(t, published)

	// A different link is a different subject and goes through.
	other := input
	other.Link = "/chat/c2"
	published, err = uc.PublishDeduped(ctx, other, window)
	require.NoError(t, err)
	assert.True(t, published)

	// Reading the pending one re-arms the window.
	require.NoError(t, uc.MarkAllRead(ctx, "user-1"))

	published, err = uc.PublishDeduped(ctx, input, window)
	require.NoError(t, err)
	assert.True(t, published)

	count, err := uc.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMarkManyRead(t *testing.T) {
	uc := newNotificationUseCase()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		n, err := uc.Publish(ctx, usecase.PublishInput{
			RecipientID: "user-1",
			Type:        entity.NotificationPriceProposal,
			Title:       "ben",
			Body:        "offer",
			Link:        fmt.Sprintf("/listings/%d", i),
		})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	require.NoError(t, uc.MarkManyRead(ctx, "user-1", ids[:2]))

	count, err := uc.UnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
