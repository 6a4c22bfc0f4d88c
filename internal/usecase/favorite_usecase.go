package usecase

import (
	"context"
	"log"

	"tsena/internal/domain/entity"
	"tsena/internal/domain/repository"
	"tsena/pkg/errors"
)

type FavoriteUseCase struct {
	favoriteRepo  repository.FavoriteRepository
	listingRepo   repository.ListingRepository
	notifications *NotificationUseCase
}

func NewFavoriteUseCase(
	favoriteRepo repository.FavoriteRepository,
	listingRepo repository.ListingRepository,
	notifications *NotificationUseCase,
) *FavoriteUseCase {
	return &FavoriteUseCase{
		favoriteRepo:  favoriteRepo,
		listingRepo:   listingRepo,
		notifications: notifications,
	}
}

func (uc *FavoriteUseCase) AddFavorite(ctx context.Context, userID, listingID string) (*entity.Favorite, error) {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		log.Printf("AddFavorite Error: Listing %s not found: %v", listingID, err)
		return nil, errors.NotFound("Listing", err)
	}

	if _, err := uc.favoriteRepo.GetByUserAndListing(ctx, userID, listingID); err == nil {
		return nil, errors.Conflict("Listing is already in favorites", nil)
	} else if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	favorite := &entity.Favorite{
		UserID:    userID,
		ListingID: listingID,
	}
	if err := uc.favoriteRepo.Create(ctx, favorite); err != nil {
		log.Printf("AddFavorite Error: Failed to create favorite for listing %s: %v", listingID, err)
		return nil, err
	}

	// Favoriting your own listing is allowed but produces no inbox entry.
	if listing.OwnerID != userID {
		if _, err := uc.notifications.Publish(ctx, PublishInput{
			RecipientID: listing.OwnerID,
			Type:        entity.NotificationFavorited,
			Title:       "New favorite",
			Body:        listing.Title,
			Link:        "/listings/" + listing.ID,
		}); err != nil {
			log.Printf("AddFavorite Warning: Failed to publish favorite notification for listing %s: %v", listing.ID, err)
		}
	}

	return favorite, nil
}
