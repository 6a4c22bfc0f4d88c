package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsena/internal/adapter/repository"
	"tsena/internal/domain/entity"
	"tsena/internal/usecase"
	"tsena/pkg/errors"
)

func newFavoriteFixture(t *testing.T) (*usecase.FavoriteUseCase, *usecase.NotificationUseCase, *entity.Listing) {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMemoryStore()
	notifications := usecase.NewNotificationUseCase(store.Notifications())
	favorites := usecase.NewFavoriteUseCase(store.Favorites(), store.Listings(), notifications)

	listing := &entity.Listing{OwnerID: "seller-1", Title: "Record player", Price: 90}
	require.NoError(t, store.Listings().Create(ctx, listing))

	return favorites, notifications, listing
}

func TestAddFavoriteNotifiesOwner(t *testing.T) {
	favorites, notifications, listing := newFavoriteFixture(t)
	ctx := context.Background()

	favorite, err := favorites.AddFavorite(ctx, "user-1", listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", favorite.UserID)

	rows, total, err := notifications.ListNotifications(ctx, "seller-1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, entity.NotificationFavorited, rows[0].Type)
	assert.Equal(t, "Record player", rows[0].Body)
}

func TestAddFavoriteDuplicateConflicts(t *testing.T) {
	favorites, notifications, listing := newFavoriteFixture(t)
	ctx := context.Background()

	_, err := favorites.AddFavorite(ctx, "user-1", listing.ID)
	require.NoError(t, err)

	_, err = favorites.AddFavorite(ctx, "user-1", listing.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "CONFLICT"))

	// The failed duplicate publishes nothing.
	count, err := notifications.UnreadCount(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAddFavoriteOwnListingIsSilent(t *testing.T) {
	favorites, notifications, listing := newFavoriteFixture(t)
	ctx := context.Background()

	_, err := favorites.AddFavorite(ctx, "seller-1", listing.ID)
	require.NoError(t, err)

	count, err := notifications.UnreadCount(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestAddFavoriteUnknownListing(t *testing.T) {
	favorites, _, _ := newFavoriteFixture(t)

	_, err := favorites.AddFavorite(context.Background(), "user-1", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}
