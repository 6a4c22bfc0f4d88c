package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"tsena/internal/domain/entity"
	"tsena/internal/domain/repository"
	"tsena/pkg/errors"
)

const (
	// Window within which a second message to the same recipient in the
	// same conversation does not produce another inbox entry. The
	// property preserved is bounded notification volume per burst, not
	// one notification per message.
	messageNotifyWindow = 5 * time.Minute

	previewLength = 50
)

// ChatUseCase owns conversation identity, the per-conversation message
// log and the unread-message aggregate.
type ChatUseCase struct {
	conversationRepo repository.ConversationRepository
	listingRepo      repository.ListingRepository
	userRepo         repository.UserRepository
	notifications    *NotificationUseCase
	maxMessageLen    int
}

func NewChatUseCase(
	conversationRepo repository.ConversationRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	notifications *NotificationUseCase,
	maxMessageLen int,
) *ChatUseCase {
	if maxMessageLen <= 0 {
		maxMessageLen = 4000
	}
	return &ChatUseCase{
		conversationRepo: conversationRepo,
		listingRepo:      listingRepo,
		userRepo:         userRepo,
		notifications:    notifications,
		maxMessageLen:    maxMessageLen,
	}
}

type StartConversationInput struct {
	ListingID      string
	InitialMessage string
}

type ConversationResponse struct {
	*entity.Conversation
	Listing     *entity.Listing `json:"listing,omitempty"`
	OtherUser   *entity.User    `json:"other_user,omitempty"`
	LastMessage *entity.Message `json:"last_message,omitempty"`
	UnreadCount int64           `json:"unread_count"`
}

// StartConversation resolves the seller from listing ownership and
// returns the conversation for the (buyer, seller, listing) triple,
// creating it when absent. The upsert is atomic in the repository, so
// two near-simultaneous calls both land on the same conversation and
// neither sees a conflict.
func (uc *ChatUseCase) StartConversation(ctx context.Context, buyerID string, input StartConversationInput) (*ConversationResponse, error) {
	listing, err := uc.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		log.Printf("StartConversation Error: Listing %s not found: %v", input.ListingID, err)
		return nil, errors.NotFound("Listing", err)
	}
	if listing.OwnerID == "" {
		log.Printf("StartConversation Error: Listing %s has no owner", input.ListingID)
		return nil, errors.NotFound("Listing owner", nil)
	}

	if buyerID == listing.OwnerID {
		log.Printf("StartConversation Error: User %s attempted to open a conversation about their own listing %s", buyerID, input.ListingID)
		return nil, errors.BadRequest("You cannot start a conversation about your own listing", nil)
	}

	conv, created, err := uc.conversationRepo.GetOrCreate(ctx, &entity.Conversation{
		BuyerID:   buyerID,
		SellerID:  listing.OwnerID,
		ListingID: listing.ID,
	})
	if err != nil {
		return nil, err
	}
	if created {
		log.Printf("StartConversation: Created conversation %s", conv.ID)
	}

	if strings.TrimSpace(input.InitialMessage) != "" {
		if _, err := uc.SendMessage(ctx, buyerID, SendMessageInput{
			ConversationID: conv.ID,
			Body:           input.InitialMessage,
		}); err != nil {
			return nil, err
		}
	}

	return uc.annotateConversation(ctx, buyerID, conv), nil
}

// GetUserConversations lists every conversation the user takes part
// in, most recent activity first, each annotated with its latest
// message and a recomputed unread count.
func (uc *ChatUseCase) GetUserConversations(ctx context.Context, userID string) ([]*ConversationResponse, error) {
	conversations, err := uc.conversationRepo.ListByUserID(ctx, userID)
	if err != nil {
		log.Printf("GetUserConversations Error: Failed to list conversations for user %s: %v", userID, err)
		return nil, err
	}

	responses := make([]*ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		responses = append(responses, uc.annotateConversation(ctx, userID, conv))
	}
	return responses, nil
}

func (uc *ChatUseCase) annotateConversation(ctx context.Context, userID string, conv *entity.Conversation) *ConversationResponse {
	resp := &ConversationResponse{Conversation: conv}

	if listing, err := uc.listingRepo.GetByID(ctx, conv.ListingID); err == nil {
		resp.Listing = listing
	} else {
		log.Printf("GetUserConversations Warning: Listing %s not found for conversation %s: %v", conv.ListingID, conv.ID, err)
	}

	if other, err := uc.userRepo.GetByID(ctx, conv.OtherParticipant(userID)); err == nil {
		resp.OtherUser = other
	}

	if last, err := uc.conversationRepo.LatestMessage(ctx, conv.ID); err == nil {
		resp.LastMessage = last
	}

	if count, err := uc.conversationRepo.CountUnreadInConversation(ctx, conv.ID, userID); err == nil {
		resp.UnreadCount = count
	}

	return resp
}

type SendMessageInput struct {
	ConversationID string
	Body           string
}

// SendMessage appends to the conversation's log and returns the stored
// message with its server-assigned id, sequence and timestamp; the
// caller's optimistic copy is reconciled against this row on its next
// poll.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.Message, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, errors.BadRequest("Message body must not be empty", nil)
	}
	if len(body) > uc.maxMessageLen {
		return nil, errors.BadRequest(fmt.Sprintf("Message body must be at most %d characters", uc.maxMessageLen), nil)
	}

	conv, err := uc.conversationRepo.GetByID(ctx, input.ConversationID)
	if err != nil {
		log.Printf("SendMessage Error: Conversation %s not found: %v", input.ConversationID, err)
		return nil, err
	}

	if !conv.HasParticipant(senderID) {
		log.Printf("SendMessage Error: User %s is not a participant in conversation %s", senderID, input.ConversationID)
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	message := &entity.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Body:           body,
	}
	if err := uc.conversationRepo.AppendMessage(ctx, message); err != nil {
		log.Printf("SendMessage Error: Failed to append message to conversation %s: %v", conv.ID, err)
		return nil, err
	}

	uc.notifyRecipient(ctx, conv, senderID, body)

	return message, nil
}

// notifyRecipient publishes the new-message inbox entry to the other
// party. Failures are logged, never surfaced: the message itself is
// already durably appended.
func (uc *ChatUseCase) notifyRecipient(ctx context.Context, conv *entity.Conversation, senderID, body string) {
	recipientID := conv.OtherParticipant(senderID)
	if recipientID == "" {
		return
	}

	title := "New message"
	if sender, err := uc.userRepo.GetByID(ctx, senderID); err == nil {
		title = sender.Username
	}

	preview := body
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}

	published, err := uc.notifications.PublishDeduped(ctx, PublishInput{
		RecipientID: recipientID,
		Type:        entity.NotificationNewMessage,
		Title:       title,
		Body:        preview,
		Link:        "/chat/" + conv.ID,
	}, messageNotifyWindow)
	if err != nil {
		log.Printf("SendMessage Warning: Failed to publish new-message notification for conversation %s: %v", conv.ID, err)
		return
	}
	if !published {
		log.Printf("SendMessage: Suppressed duplicate new-message notification for conversation %s", conv.ID)
	}
}

// GetConversationMessages returns the full ordered history. Order is
// server-assigned (timestamp, then log-append sequence) and
// authoritative.
func (uc *ChatUseCase) GetConversationMessages(ctx context.Context, requesterID, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	conv, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		log.Printf("GetConversationMessages Error: Conversation %s not found: %v", conversationID, err)
		return nil, 0, err
	}

	if !conv.HasParticipant(requesterID) {
		log.Printf("GetConversationMessages Error: User %s is not a participant in conversation %s", requesterID, conversationID)
		return nil, 0, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	return uc.conversationRepo.ListMessages(ctx, conversationID, limit, offset)
}

// MarkConversationRead flips read=true on every message the reader
// received. Idempotent; the flag never transitions back.
func (uc *ChatUseCase) MarkConversationRead(ctx context.Context, readerID, conversationID string) error {
	conv, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		log.Printf("MarkConversationRead Error: Conversation %s not found: %v", conversationID, err)
		return err
	}

	if !conv.HasParticipant(readerID) {
		log.Printf("MarkConversationRead Error: User %s is not a participant in conversation %s", readerID, conversationID)
		return errors.Forbidden("User is not a participant in this conversation", nil)
	}

	return uc.conversationRepo.MarkMessagesRead(ctx, conversationID, readerID)
}

// UnreadMessageCount recomputes the unread aggregate from the message
// log on every call. No cache: every surface polling this must agree
// on the same ground truth within one interval.
func (uc *ChatUseCase) UnreadMessageCount(ctx context.Context, userID string) (int64, error) {
	return uc.conversationRepo.CountUnreadForUser(ctx, userID)
}

// NotifyListingStatusChange publishes a listing-status notification to
// every buyer with an open conversation about the listing, except the
// optional excluded user (e.g. the buyer whose accepted proposal
// caused the change and who is told through a dedicated record).
func (uc *ChatUseCase) NotifyListingStatusChange(ctx context.Context, listing *entity.Listing, exceptUserID string) {
	conversations, err := uc.conversationRepo.ListByListingID(ctx, listing.ID)
	if err != nil {
		log.Printf("NotifyListingStatusChange Warning: Failed to list conversations for listing %s: %v", listing.ID, err)
		return
	}

	for _, conv := range conversations {
		if conv.BuyerID == exceptUserID {
			continue
		}
		if _, err := uc.notifications.Publish(ctx, PublishInput{
			RecipientID: conv.BuyerID,
			Type:        entity.NotificationListingStatus,
			Title:       "Listing updated",
			Body:        fmt.Sprintf("%s is now %s", listing.Title, listing.Status),
			Link:        "/listings/" + listing.ID,
		}); err != nil {
			log.Printf("NotifyListingStatusChange Warning: Failed to notify user %s for listing %s: %v", conv.BuyerID, listing.ID, err)
		}
	}
}
