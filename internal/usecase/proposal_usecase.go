package usecase

import (
	"context"
	"fmt"
	"log"

	"tsena/internal/domain/entity"
	"tsena/internal/domain/repository"
	"tsena/pkg/errors"
)

// ProposalUseCase handles buyer price offers on negotiable listings.
// Every proposal action fans out exactly one notification through the
// outbox.
type ProposalUseCase struct {
	proposalRepo  repository.ProposalRepository
	listingRepo   repository.ListingRepository
	userRepo      repository.UserRepository
	notifications *NotificationUseCase
	chat          *ChatUseCase
}

func NewProposalUseCase(
	proposalRepo repository.ProposalRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	notifications *NotificationUseCase,
	chat *ChatUseCase,
) *ProposalUseCase {
	return &ProposalUseCase{
		proposalRepo:  proposalRepo,
		listingRepo:   listingRepo,
		userRepo:      userRepo,
		notifications: notifications,
		chat:          chat,
	}
}

type CreateProposalInput struct {
	ListingID     string
	ProposedPrice float64
}

func (uc *ProposalUseCase) CreateProposal(ctx context.Context, buyerID string, input CreateProposalInput) (*entity.PriceProposal, error) {
	if input.ProposedPrice <= 0 {
		return nil, errors.BadRequest("Proposed price must be a positive amount", nil)
	}

	listing, err := uc.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		log.Printf("CreateProposal Error: Listing %s not found: %v", input.ListingID, err)
		return nil, errors.NotFound("Listing", err)
	}

	if listing.Status != entity.ListingAvailable {
		return nil, errors.BadRequest("Listing is not available", nil)
	}
	if !listing.Negotiable {
		return nil, errors.BadRequest("This listing does not accept price proposals", nil)
	}
	if buyerID == listing.OwnerID {
		return nil, errors.BadRequest("You cannot propose a price on your own listing", nil)
	}
	if input.ProposedPrice >= listing.Price {
		return nil, errors.BadRequest("Proposed price must be less than the listing price", nil)
	}

	var proposal *entity.PriceProposal

	existing, err := uc.proposalRepo.GetByBuyerAndListing(ctx, buyerID, input.ListingID)
	switch {
	case err == nil && existing.Status == entity.ProposalPending:
		return nil, errors.Conflict("You already have a pending proposal for this listing", nil)
	case err == nil:
		// A rejected proposal is re-opened with the new price rather
		// than stacking a second row per buyer.
		existing.ProposedPrice = input.ProposedPrice
		existing.Status = entity.ProposalPending
		if err := uc.proposalRepo.Update(ctx, existing); err != nil {
			log.Printf("CreateProposal Error: Failed to re-open proposal %s: %v", existing.ID, err)
			return nil, err
		}
		proposal = existing
	case errors.Is(err, "NOT_FOUND"):
		proposal = &entity.PriceProposal{
			ListingID:     input.ListingID,
			BuyerID:       buyerID,
			SellerID:      listing.OwnerID,
			ProposedPrice: input.ProposedPrice,
			Status:        entity.ProposalPending,
		}
		if err := uc.proposalRepo.Create(ctx, proposal); err != nil {
			log.Printf("CreateProposal Error: Failed to create proposal for listing %s: %v", input.ListingID, err)
			return nil, err
		}
	default:
		return nil, err
	}

	buyerName := "A buyer"
	if buyer, err := uc.userRepo.GetByID(ctx, buyerID); err == nil {
		buyerName = buyer.Username
	}

	if _, err := uc.notifications.Publish(ctx, PublishInput{
		RecipientID: listing.OwnerID,
		Type:        entity.NotificationPriceProposal,
		Title:       "Price proposal",
		Body:        fmt.Sprintf("%s offers %.0f for %s", buyerName, input.ProposedPrice, listing.Title),
		Link:        "/listings/" + listing.ID,
	}); err != nil {
		log.Printf("CreateProposal Warning: Failed to publish proposal notification for listing %s: %v", listing.ID, err)
	}

	return proposal, nil
}

type RespondToProposalInput struct {
	ProposalID string
	Accept     bool
}

func (uc *ProposalUseCase) RespondToProposal(ctx context.Context, sellerID string, input RespondToProposalInput) (*entity.PriceProposal, error) {
	proposal, err := uc.proposalRepo.GetByID(ctx, input.ProposalID)
	if err != nil {
		log.Printf("RespondToProposal Error: Proposal %s not found: %v", input.ProposalID, err)
		return nil, err
	}

	if proposal.SellerID != sellerID {
		log.Printf("RespondToProposal Error: User %s is not the seller for proposal %s", sellerID, input.ProposalID)
		return nil, errors.Forbidden("Only the seller can accept or reject proposals", nil)
	}
	if proposal.Status != entity.ProposalPending {
		return nil, errors.BadRequest("This proposal has already been processed", nil)
	}

	if input.Accept {
		return uc.acceptProposal(ctx, proposal)
	}
	return uc.rejectProposal(ctx, proposal)
}

func (uc *ProposalUseCase) acceptProposal(ctx context.Context, proposal *entity.PriceProposal) (*entity.PriceProposal, error) {
	proposal.Status = entity.ProposalAccepted
	if err := uc.proposalRepo.Update(ctx, proposal); err != nil {
		log.Printf("RespondToProposal Error: Failed to accept proposal %s: %v", proposal.ID, err)
		return nil, err
	}

	listing, err := uc.listingRepo.GetByID(ctx, proposal.ListingID)
	if err == nil {
		listing.Status = entity.ListingReserved
		if err := uc.listingRepo.Update(ctx, listing); err != nil {
			log.Printf("RespondToProposal Warning: Failed to reserve listing %s: %v", listing.ID, err)
		} else {
			// Other interested buyers learn through the status fan-out;
			// the accepted buyer gets the dedicated record below.
			uc.chat.NotifyListingStatusChange(ctx, listing, proposal.BuyerID)
		}
	}

	if _, err := uc.notifications.Publish(ctx, PublishInput{
		RecipientID: proposal.BuyerID,
		Type:        entity.NotificationProposalAccepted,
		Title:       "Proposal accepted",
		Body:        "Your price proposal has been accepted",
		Link:        "/listings/" + proposal.ListingID,
	}); err != nil {
		log.Printf("RespondToProposal Warning: Failed to publish acceptance notification for proposal %s: %v", proposal.ID, err)
	}

	// Open the conversation for the triple so the pair can arrange the
	// handover; idempotent when one already exists.
	if _, err := uc.chat.StartConversation(ctx, proposal.BuyerID, StartConversationInput{
		ListingID: proposal.ListingID,
	}); err != nil {
		log.Printf("RespondToProposal Warning: Failed to open conversation for proposal %s: %v", proposal.ID, err)
	}

	return proposal, nil
}

func (uc *ProposalUseCase) rejectProposal(ctx context.Context, proposal *entity.PriceProposal) (*entity.PriceProposal, error) {
	proposal.Status = entity.ProposalRejected
	if err := uc.proposalRepo.Update(ctx, proposal); err != nil {
		log.Printf("RespondToProposal Error: Failed to reject proposal %s: %v", proposal.ID, err)
		return nil, err
	}

	if _, err := uc.notifications.Publish(ctx, PublishInput{
		RecipientID: proposal.BuyerID,
		Type:        entity.NotificationProposalRejected,
		Title:       "Proposal rejected",
		Body:        "Your price proposal has been rejected",
		Link:        "/listings/" + proposal.ListingID,
	}); err != nil {
		log.Printf("RespondToProposal Warning: Failed to publish rejection notification for proposal %s: %v", proposal.ID, err)
	}

	return proposal, nil
}
