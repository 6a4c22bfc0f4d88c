package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"tsena/internal/domain/entity"
	"tsena/internal/domain/repository"
	"tsena/pkg/errors"
)

type firestoreFavoriteRepository struct {
	client *firestore.Client
}

func NewFirestoreFavoriteRepository(client *firestore.Client) repository.FavoriteRepository {
	return &firestoreFavoriteRepository{
		client: client,
	}
}

func (r *firestoreFavoriteRepository) Create(ctx context.Context, favorite *entity.Favorite) error {
	if favorite.ID == "" {
		favorite.ID = uuid.New().String()
	}
	favorite.CreatedAt = time.Now()

	_, err := r.client.Collection("favorites").Doc(favorite.ID).Set(ctx, favorite)
	if err != nil {
		return errors.Internal("Failed to create favorite", err)
	}
	return nil
}

func (r *firestoreFavoriteRepository) GetByUserAndListing(ctx context.Context, userID, listingID string) (*entity.Favorite, error) {
	iter := r.client.Collection("favorites").
		Where("userId", "==", userID).
		Where("listingId", "==", listingID).
		Limit(1).Documents(ctx)

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Favorite", nil)
		}
		return nil, errors.Internal("Failed to query favorite", err)
	}

	var favorite entity.Favorite
	if err := doc.DataTo(&favorite); err != nil {
		return nil, errors.Internal("Failed to parse favorite data", err)
	}
	return &favorite, nil
}
