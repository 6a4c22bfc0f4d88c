package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tsena/internal/domain/entity"
	"tsena/internal/domain/repository"
	"tsena/pkg/errors"
)

type firestoreProposalRepository struct {
	client *firestore.Client
}

func NewFirestoreProposalRepository(client *firestore.Client) repository.ProposalRepository {
	return &firestoreProposalRepository{
		client: client,
	}
}

func (r *firestoreProposalRepository) Create(ctx context.Context, proposal *entity.PriceProposal) error {
	if proposal.ID == "" {
		proposal.ID = uuid.New().String()
	}
	now := time.Now()
	proposal.CreatedAt = now
	proposal.UpdatedAt = now

	_, err := r.client.Collection("proposals").Doc(proposal.ID).Set(ctx, proposal)
	if err != nil {
		return errors.Internal("Failed to create proposal", err)
	}
	return nil
}

func (r *firestoreProposalRepository) GetByID(ctx context.Context, id string) (*entity.PriceProposal, error) {
	doc, err := r.client.Collection("proposals").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Proposal", err)
		}
		return nil, errors.Internal("Failed to get proposal", err)
	}

	var proposal entity.PriceProposal
	if err := doc.DataTo(&proposal); err != nil {
		return nil, errors.Internal("Failed to parse proposal data", err)
	}
	return &proposal, nil
}

func (r *firestoreProposalRepository) GetByBuyerAndListing(ctx context.Context, buyerID, listingID string) (*entity.PriceProposal, error) {
	iter := r.client.Collection("proposals").
		Where("buyerId", "==", buyerID).
		Where("listingId", "==", listingID).
		Limit(1).Documents(ctx)

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Proposal", nil)
		}
		return nil, errors.Internal("Failed to query proposal", err)
	}

	var proposal entity.PriceProposal
	if err := doc.DataTo(&proposal); err != nil {
		return nil, errors.Internal("Failed to parse proposal data", err)
	}
	return &proposal, nil
}

func (r *firestoreProposalRepository) Update(ctx context.Context, proposal *entity.PriceProposal) error {
	proposal.UpdatedAt = time.Now()

	_, err := r.client.Collection("proposals").Doc(proposal.ID).Set(ctx, proposal)
	if err != nil {
		return errors.Internal("Failed to update proposal", err)
	}
	return nil
}
