package repository

import (
	"context"

	"tsena/internal/domain/entity"
)

type FavoriteRepository interface {
	Create(ctx context.Context, favorite *entity.Favorite) error
	GetByUserAndListing(ctx context.Context, userID, listingID string) (*entity.Favorite, error)
}
