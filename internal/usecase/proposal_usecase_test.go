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

type proposalFixture struct {
	store         *repository.MemoryStore
	notifications *usecase.NotificationUseCase
	chat          *usecase.ChatUseCase
	proposals     *usecase.ProposalUseCase

	buyer   *entity.User
	seller  *entity.User
	listing *entity.Listing
}

func newProposalFixture(t *testing.T) *proposalFixture {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMemoryStore()
	notifications := usecase.NewNotificationUseCase(store.Notifications())
	chat := usecase.NewChatUseCase(store.Conversations(), store.Listings(), store.Users(), notifications, 0)
	proposals := usecase.NewProposalUseCase(store.Proposals(), store.Listings(), store.Users(), notifications, chat)

	f := &proposalFixture{
		store:         store,
		notifications: notifications,
		chat:          chat,
		proposals:     proposals,
		buyer:         &entity.User{ID: "buyer-1", Username: "ben"},
		seller:        &entity.User{ID: "seller-1", Username: "sara"},
		listing:       &entity.Listing{OwnerID: "seller-1", Title: "Oak table", Price: 300, Negotiable: true},
	}

	require.NoError(t, store.Users().Create(ctx, f.buyer))
	require.NoError(t, store.Users().Create(ctx, f.seller))
	require.NoError(t, store.Listings().Create(ctx, f.listing))

	return f
}

func (f *proposalFixture) unreadOfType(t *testing.T, userID, notificationType string) []*entity.Notification {
	t.Helper()

	all, _, err := f.notifications.ListNotifications(context.Background(), userID, 100, 0)
	require.NoError(t, err)

	var matched []*entity.Notification
	for _, n := range all {
		if n.Type == notificationType {
			matched = append(matched, n)
		}
	}
	return matched
}

func TestCreateProposalNotifiesSeller(t *testing.T) {
	f := newProposalFixture(t)
	ctx := context.Background()

	proposal, err := f.proposals.CreateProposal(ctx, f.buyer.ID, usecase.CreateProposalInput{
		ListingID:     f.listing.ID,
		ProposedPrice: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalPending, proposal.Status)
	assert.Equal(t, f.seller.ID, proposal.SellerID)

	notifications := f.unreadOfType(t, f.seller.ID, entity.NotificationPriceProposal)
	require.Len(t, notifications, 1)
	assert.Equal(t, "ben offers 250 for Oak table", notifications[0].Body)
	assert.Equal(t, "/listings/"+f.listing.ID, notifications[0].Link)
}

func TestCreateProposalValidation(t *testing.T) {
	f := newProposalFixture(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		buyerID string
		input   usecase.CreateProposalInput
		code    string
	}{
		{"zero price", f.buyer.ID, usecase.CreateProposalInput{ListingID: f.listing.ID, ProposedPrice: 0}, "BAD_REQUEST"},
		{"at asking price", f.buyer.ID, usecase.CreateProposalInput{ListingID: f.listing.ID, ProposedPrice: 300}, "BAD_REQUEST"},
		{"own listing", f.seller.ID, usecase.CreateProposalInput{ListingID: f.listing.ID, ProposedPrice: 100}, "BAD_REQUEST"},
		{"unknown listing", f.buyer.ID, usecase.CreateProposalInput{ListingID: "missing", ProposedPrice: 100}, "NOT_FOUND"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.proposals.CreateProposal(ctx, tc.buyerID, tc.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.code))
		})
	}
}

func TestCreateProposalRejectsNonNegotiable(t *testing.T) {
	f := newProposalFixture(t)
	ctx := context.Background()

	fixed := &entity.Listing{OwnerID: f.seller.ID, Title: "Lamp", Price: 40}
	require.NoError(t, f.store.Listings().Create(ctx, fixed))

	_, err := f.proposals.CreateProposal(ctx, f.buyer.ID, usecase.CreateProposalInput{
		ListingID:     fixed.ID,
		ProposedPrice: 30,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestDuplicatePendingProposalConflicts(t *testing.T) {
	f := newProposalFixture(t)
	ctx := context.Background()

	_, err := f.proposals.CreateProposal(ctx, f.buyer.ID, usecase.CreateProposalInput{
		ListingID:     f.listing.ID,
		ProposedPrice: 250,
	})
	require.NoError(t, err)

	_, err = f.proposals.CreateProposal(ctx, f.buyer.ID, usecase.CreateProposalInput{
		ListingID:     f.listing.ID,
		ProposedPrice: 260,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestRejectedProposalCanBeReopened(t *testing.T) {
	f := newProposalFixture(t)
	ctx := context.Background()

	first, err := f.proposals.CreateProposal(ctx, f.buyer.ID, usecase.CreateProposalInput{
		ListingID:     f.listing.ID,
		ProposedPrice: 200,
	})
	require.NoError(t, err)

	_, err = f.proposals.RespondToProposal(ctx, f.seller.ID, usecase.RespondToProposalInput{
		ProposalID: first.ID,
		Accept:     false,
	})
	require.NoError(t, err)

	rejections := f.unreadOfType(t, f.buyer.ID, entity.NotificationProposalRejected)
	assert.Len(t, rejections, 1)

	second, err := f.proposals.CreateProposal(ctx, f.buyer.ID, usecase.CreateProposalInput{
		ListingID:     f.listing.ID,
		ProposedPrice: 240,
	})
	require.NoError(t, err)

	// Same row, re-opened with the new price.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, entity.ProposalPending, second.Status)
	assert.Equal(t, float64(240), second.ProposedPrice)
}

func TestOnlySellerCanRespond(t *testing.T) {
	f := newProposalFixture(t)
	ctx := context.Background()

	proposal, err := f.proposals.CreateProposal(ctx, f.buyer.ID, usecase.CreateProposalInput{
		ListingID:     f.listing.ID,
		ProposedPrice: 250,
	})
	require.NoError(t, err)

	_, err = f.proposals.RespondToProposal(ctx, f.buyer.ID, usecase.RespondToProposalInput{
		ProposalID: proposal.ID,
		Accept:     true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestAcceptProposalFanOut(t *testing.T) {
	f := newProposalFixture(t)
	ctx := context.Background()

	// A second interested buyer already has a conversation open about
	// the listing.
	bystander := &entity.User{ID: "buyer-2", Username: "bella"}
	require.NoError(t, f.store.Users().Create(ctx, bystander))
	_, err := f.chat.StartConversation(ctx, bystander.ID, usecase.StartConversationInput{ListingID: f.listing.ID})
	require.NoError(t, err)

	proposal, err := f.proposals.CreateProposal(ctx, f.buyer.ID, usecase.CreateProposalInput{
		ListingID:     f.listing.ID,
		ProposedPrice: 250,
	})
	require.NoError(t, err)

	accepted, err := f.proposals.RespondToProposal(ctx, f.seller.ID, usecase.RespondToProposalInput{
		ProposalID: proposal.ID,
		Accept:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ProposalAccepted, accepted.Status)

	// The listing is reserved.
	listing, err := f.store.Listings().GetByID(ctx, f.listing.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ListingReserved, listing.Status)

	// The accepted buyer gets exactly one acceptance record and no
	// status record.
	assert.Len(t, f.unreadOfType(t, f.buyer.ID, entity.NotificationProposalAccepted), 1)
	assert.Empty(t, f.unreadOfType(t, f.buyer.ID, entity.NotificationListingStatus))

	// The bystander learns through the listing-status fan-out.
	assert.Len(t, f.unreadOfType(t, bystander.ID, entity.NotificationListingStatus), 1)

	// A conversation between the pair now exists for the handover.
	conversations, err := f.chat.GetUserConversations(ctx, f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, f.seller.ID, conversations[0].SellerID)

	// Accepting twice is rejected.
	_, err = f.proposals.RespondToProposal(ctx, f.seller.ID, usecase.RespondToProposalInput{
		ProposalID: proposal.ID,
		Accept:     true,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}
