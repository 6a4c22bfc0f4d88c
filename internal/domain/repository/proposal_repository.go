package repository

import (
	"context"

	"tsena/internal/domain/entity"
)

type ProposalRepository interface {
	Create(ctx context.Context, proposal *entity.PriceProposal) error
	GetByID(ctx context.Context, id string) (*entity.PriceProposal, error)
	GetByBuyerAndListing(ctx context.Context, buyerID, listingID string) (*entity.PriceProposal, error)
	Update(ctx context.Context, proposal *entity.PriceProposal) error
}
