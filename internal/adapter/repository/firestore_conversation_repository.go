package repository

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tsena/internal/domain/entity"
	"tsena/internal/domain/repository"
	"tsena/pkg/errors"
	"tsena/pkg/logger"
)

type firestoreConversationRepository struct {
	client *firestore.Client
}

func NewFirestoreConversationRepository(client *firestore.Client) repository.ConversationRepository {
	return &firestoreConversationRepository{
		client: client,
	}
}

// conversationDocID derives a deterministic document ID from the
// buyer/seller/listing triple so the uniqueness invariant is enforced
// by the document path itself rather than a read-then-write check.
func conversationDocID(buyerID, sellerID, listingID string) string {
	return fmt.Sprintf("%s_%s_%s", buyerID, sellerID, listingID)
}

func (r *firestoreConversationRepository) GetOrCreate(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, bool, error) {
	docID := conversationDocID(conv.BuyerID, conv.SellerID, conv.ListingID)
	docRef := r.client.Collection("conversations").Doc(docID)

	var result entity.Conversation
	created := false

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err == nil {
			created = false
			return doc.DataTo(&result)
		}
		if status.Code(err) != codes.NotFound {
			return err
		}

		now := time.Now()
		result = *conv
		result.ID = docID
		result.CreatedAt = now
		result.LastActivityAt = now
		created = true

		return tx.Create(docRef, &result)
	})
	if err != nil {
		log.Printf("GetOrCreate: transaction failed for conversation %s: %v", docID, err)
		return nil, false, errors.Internal("Failed to get or create conversation", err)
	}

	return &result, created, nil
}

func (r *firestoreConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.client.Collection("conversations").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}

	var conv entity.Conversation
	if err := doc.DataTo(&conv); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}

	return &conv, nil
}

func (r *firestoreConversationRepository) ListByUserID(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	buyerDocs, err := r.client.Collection("conversations").Where("buyerId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		log.Printf("ListByUserID: failed to fetch buyer conversations for %s: %v", userID, err)
		return nil, errors.Internal("Failed to fetch conversations", err)
	}
	sellerDocs, err := r.client.Collection("conversations").Where("sellerId", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		log.Printf("ListByUserID: failed to fetch seller conversations for %s: %v", userID, err)
		return nil, errors.Internal("Failed to fetch conversations", err)
	}

	var conversations []*entity.Conversation
	for _, doc := range append(buyerDocs, sellerDocs...) {
		var conv entity.Conversation
		if err := doc.DataTo(&conv); err != nil {
			logger.Error("Failed to parse conversation %s: %v", doc.Ref.ID, err)
			continue
		}
		conversations = append(conversations, &conv)
	}

	sortConversationsByActivity(conversations)
	return conversations, nil
}

func (r *firestoreConversationRepository) ListByListingID(ctx context.Context, listingID string) ([]*entity.Conversation, error) {
	docs, err := r.client.Collection("conversations").Where("listingId", "==", listingID).Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch conversations for listing", err)
	}

	var conversations []*entity.Conversation
	for _, doc := range docs {
		var conv entity.Conversation
		if err := doc.DataTo(&conv); err != nil {
			continue
		}
		conversations = append(conversations, &conv)
	}

	return conversations, nil
}

func (r *firestoreConversationRepository) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.client.Collection("conversations").Doc(id).Update(ctx, []firestore.Update{
		{Path: "lastActivityAt", Value: at},
	})
	if err != nil {
		return errors.Internal("Failed to update conversation activity", err)
	}
	return nil
}

func (r *firestoreConversationRepository) AppendMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.CreatedAt = time.Now()

	convRef := r.client.Collection("conversations").Doc(message.ConversationID)
	msgRef := convRef.Collection("messages").Doc(message.ID)

	// The per-conversation sequence counter gives messages a total
	// order even when timestamps collide.
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(convRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Conversation", err)
			}
			return err
		}

		seq, _ := doc.DataAt("messageSeq")
		next := int64(1)
		if n, ok := seq.(int64); ok {
			next = n + 1
		}
		message.Seq = next

		if err := tx.Update(convRef, []firestore.Update{
			{Path: "messageSeq", Value: next},
			{Path: "lastActivityAt", Value: message.CreatedAt},
		}); err != nil {
			return err
		}
		return tx.Create(msgRef, message)
	})
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return err
		}
		log.Printf("AppendMessage: transaction failed for conversation %s: %v", message.ConversationID, err)
		return errors.Internal("Failed to append message", err)
	}

	return nil
}

func (r *firestoreConversationRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection("conversations").Doc(conversationID).Collection("messages").OrderBy("seq", firestore.Asc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("ListMessages: firestore error for conversation %s: %v", conversationID, err)
		return nil, 0, errors.Internal("Failed to fetch messages", err)
	}
	total := int64(len(allDocs))

	// Paginate in memory, same as the conversation list.
	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var messages []*entity.Message
	for _, doc := range allDocs[start:end] {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Error("Failed to parse message %s: %v", doc.Ref.ID, err)
			continue
		}
		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreConversationRepository) LatestMessage(ctx context.Context, conversationID string) (*entity.Message, error) {
	iter := r.client.Collection("conversations").Doc(conversationID).Collection("messages").
		OrderBy("seq", firestore.Desc).Limit(1).Documents(ctx)

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Message", nil)
		}
		return nil, errors.Internal("Failed to fetch latest message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

func (r *firestoreConversationRepository) MarkMessagesRead(ctx context.Context, conversationID, readerID string) error {
	docs, err := r.client.Collection("conversations").Doc(conversationID).Collection("messages").
		Where("read", "==", false).Documents(ctx).GetAll()
	if err != nil {
		return errors.Internal("Failed to fetch unread messages", err)
	}

	batch := r.client.Batch()
	updates := 0
	for _, doc := range docs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			continue
		}
		// Only the recipient's view flips the flag; the sender's own
		// messages stay untouched.
		if message.SenderID == readerID {
			continue
		}
		batch.Update(doc.Ref, []firestore.Update{{Path: "read", Value: true}})
		updates++
	}

	if updates == 0 {
		return nil
	}
	if _, err := batch.Commit(ctx); err != nil {
		return errors.Internal("Failed to mark messages read", err)
	}
	return nil
}

func (r *firestoreConversationRepository) CountUnreadInConversation(ctx context.Context, conversationID, userID string) (int64, error) {
	docs, err := r.client.Collection("conversations").Doc(conversationID).Collection("messages").
		Where("read", "==", false).Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}

	var count int64
	for _, doc := range docs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			continue
		}
		if message.SenderID != userID {
			count++
		}
	}
	return count, nil
}

func (r *firestoreConversationRepository) CountUnreadForUser(ctx context.Context, userID string) (int64, error) {
	conversations, err := r.ListByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, conv := range conversations {
		count, err := r.CountUnreadInConversation(ctx, conv.ID, userID)
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

func sortConversationsByActivity(conversations []*entity.Conversation) {
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastActivityAt.After(conversations[j].LastActivityAt)
	})
}
