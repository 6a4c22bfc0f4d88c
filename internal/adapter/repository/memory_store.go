package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tsena/internal/domain/entity"
	"tsena/internal/domain/repository"
	"tsena/pkg/errors"
)

// MemoryStore backs every repository interface with in-process maps.
// It is the store driver for local development (STORE_DRIVER=memory)
// and for tests, and it enforces the same invariants as the Firestore
// driver: the conversation upsert is atomic under its mutex, message
// sequence numbers are per-conversation monotonic, and bulk read-flag
// flips happen inside one critical section.
type MemoryStore struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
	messages      map[string][]*entity.Message // conversationID -> append order
	messageSeq    map[string]int64
	notifications map[string]*entity.Notification
	listings      map[string]*entity.Listing
	users         map[string]*entity.User
	proposals     map[string]*entity.PriceProposal
	reports       map[string]*entity.Report
	favorites     map[string]*entity.Favorite
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string][]*entity.Message),
		messageSeq:    make(map[string]int64),
		notifications: make(map[string]*entity.Notification),
		listings:      make(map[string]*entity.Listing),
		users:         make(map[string]*entity.User),
		proposals:     make(map[string]*entity.PriceProposal),
		reports:       make(map[string]*entity.Report),
		favorites:     make(map[string]*entity.Favorite),
	}
}

func (s *MemoryStore) Conversations() repository.ConversationRepository {
	return &memoryConversationRepository{store: s}
}

func (s *MemoryStore) Notifications() repository.NotificationRepository {
	return &memoryNotificationRepository{store: s}
}

func (s *MemoryStore) Listings() repository.ListingRepository {
	return &memoryListingRepository{store: s}
}

func (s *MemoryStore) Users() repository.UserRepository {
	return &memoryUserRepository{store: s}
}

func (s *MemoryStore) Proposals() repository.ProposalRepository {
	return &memoryProposalRepository{store: s}
}

func (s *MemoryStore) Reports() repository.ReportRepository {
	return &memoryReportRepository{store: s}
}

func (s *MemoryStore) Favorites() repository.FavoriteRepository {
	return &memoryFavoriteRepository{store: s}
}

type memoryConversationRepository struct {
	store *MemoryStore
}

func (r *memoryConversationRepository) GetOrCreate(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	docID := conversationDocID(conv.BuyerID, conv.SellerID, conv.ListingID)
	if existing, ok := s.conversations[docID]; ok {
		copied := *existing
		return &copied, false, nil
	}

	now := time.Now()
	created := *conv
	created.ID = docID
	created.CreatedAt = now
	created.LastActivityAt = now
	s.conversations[docID] = &created

	copied := created
	return &copied, true, nil
}

func (r *memoryConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	copied := *conv
	return &copied, nil
}

func (r *memoryConversationRepository) ListByUserID(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var conversations []*entity.Conversation
	for _, conv := range s.conversations {
		if conv.HasParticipant(userID) {
			copied := *conv
			conversations = append(conversations, &copied)
		}
	}
	sortConversationsByActivity(conversations)
	return conversations, nil
}

func (r *memoryConversationRepository) ListByListingID(ctx context.Context, listingID string) ([]*entity.Conversation, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var conversations []*entity.Conversation
	for _, conv := range s.conversations {
		if conv.ListingID == listingID {
			copied := *conv
			conversations = append(conversations, &copied)
		}
	}
	return conversations, nil
}

func (r *memoryConversationRepository) Touch(ctx context.Context, id string, at time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	conv.LastActivityAt = at
	return nil
}

func (r *memoryConversationRepository) AppendMessage(ctx context.Context, message *entity.Message) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[message.ConversationID]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.CreatedAt = time.Now()
	s.messageSeq[message.ConversationID]++
	message.Seq = s.messageSeq[message.ConversationID]

	copied := *message
	s.messages[message.ConversationID] = append(s.messages[message.ConversationID], &copied)
	conv.LastActivityAt = message.CreatedAt
	return nil
}

func (r *memoryConversationRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.messages[conversationID]
	total := int64(len(all))

	start := offset
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	messages := make([]*entity.Message, 0, end-start)
	for _, message := range all[start:end] {
		copied := *message
		messages = append(messages, &copied)
	}
	return messages, total, nil
}

func (r *memoryConversationRepository) LatestMessage(ctx context.Context, conversationID string) (*entity.Message, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.messages[conversationID]
	if len(all) == 0 {
		return nil, errors.NotFound("Message", nil)
	}
	copied := *all[len(all)-1]
	return &copied, nil
}

func (r *memoryConversationRepository) MarkMessagesRead(ctx context.Context, conversationID, readerID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, message := range s.messages[conversationID] {
		if message.SenderID != readerID {
			message.Read = true
		}
	}
	return nil
}

func (r *memoryConversationRepository) CountUnreadInConversation(ctx context.Context, conversationID, userID string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	return r.countUnreadLocked(conversationID, userID), nil
}

func (r *memoryConversationRepository) countUnreadLocked(conversationID, userID string) int64 {
	var count int64
	for _, message := range r.store.messages[conversationID] {
		if !message.Read && message.SenderID != userID {
			count++
		}
	}
	return count
}

func (r *memoryConversationRepository) CountUnreadForUser(ctx context.Context, userID string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, conv := range s.conversations {
		if conv.HasParticipant(userID) {
			total += r.countUnreadLocked(conv.ID, userID)
		}
	}
	return total, nil
}

type memoryNotificationRepository struct {
	store *MemoryStore
}

func (r *memoryNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	notification.CreatedAt = time.Now()

	copied := *notification
	s.notifications[notification.ID] = &copied
	return nil
}

func (r *memoryNotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	notification, ok := s.notifications[id]
	if !ok {
		return nil, errors.NotFound("Notification", nil)
	}
	copied := *notification
	return &copied, nil
}

func (r *memoryNotificationRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*entity.Notification
	for _, notification := range s.notifications {
		if notification.UserID == userID {
			copied := *notification
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	start := offset
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return all[start:end], total, nil
}

func (r *memoryNotificationRepository) MarkRead(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	notification, ok := s.notifications[id]
	if !ok {
		return errors.NotFound("Notification", nil)
	}
	notification.Read = true
	return nil
}

func (r *memoryNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, notification := range s.notifications {
		if notification.UserID == userID {
			notification.Read = true
		}
	}
	return nil
}

func (r *memoryNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, notification := range s.notifications {
		if notification.UserID == userID && !notification.Read {
			count++
		}
	}
	return count, nil
}

func (r *memoryNotificationRepository) HasRecentUnread(ctx context.Context, userID, notificationType, link string, since time.Time) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, notification := range s.notifications {
		if notification.UserID == userID &&
			notification.Type == notificationType &&
			notification.Link == link &&
			!notification.Read &&
			!notification.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

type memoryListingRepository struct {
	store *MemoryStore
}

func (r *memoryListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	if listing.Status == "" {
		listing.Status = entity.ListingAvailable
	}

	copied := *listing
	s.listings[listing.ID] = &copied
	return nil
}

func (r *memoryListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	copied := *listing
	return &copied, nil
}

func (r *memoryListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[listing.ID]; !ok {
		return errors.NotFound("Listing", nil)
	}
	listing.UpdatedAt = time.Now()
	copied := *listing
	s.listings[listing.ID] = &copied
	return nil
}

type memoryUserRepository struct {
	store *MemoryStore
}

func (r *memoryUserRepository) Create(ctx context.Context, user *entity.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *user
	return &copied, nil
}

type memoryProposalRepository struct {
	store *MemoryStore
}

func (r *memoryProposalRepository) Create(ctx context.Context, proposal *entity.PriceProposal) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if proposal.ID == "" {
		proposal.ID = uuid.New().String()
	}
	now := time.Now()
	proposal.CreatedAt = now
	proposal.UpdatedAt = now

	copied := *proposal
	s.proposals[proposal.ID] = &copied
	return nil
}

func (r *memoryProposalRepository) GetByID(ctx context.Context, id string) (*entity.PriceProposal, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	proposal, ok := s.proposals[id]
	if !ok {
		return nil, errors.NotFound("Proposal", nil)
	}
	copied := *proposal
	return &copied, nil
}

func (r *memoryProposalRepository) GetByBuyerAndListing(ctx context.Context, buyerID, listingID string) (*entity.PriceProposal, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, proposal := range s.proposals {
		if proposal.BuyerID == buyerID && proposal.ListingID == listingID {
			copied := *proposal
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Proposal", nil)
}

func (r *memoryProposalRepository) Update(ctx context.Context, proposal *entity.PriceProposal) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.proposals[proposal.ID]; !ok {
		return errors.NotFound("Proposal", nil)
	}
	proposal.UpdatedAt = time.Now()
	copied := *proposal
	s.proposals[proposal.ID] = &copied
	return nil
}

type memoryReportRepository struct {
	store *MemoryStore
}

func (r *memoryReportRepository) Create(ctx context.Context, report *entity.Report) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now
	if report.Status == "" {
		report.Status = entity.ReportOpen
	}

	copied := *report
	s.reports[report.ID] = &copied
	return nil
}

func (r *memoryReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, errors.NotFound("Report", nil)
	}
	copied := *report
	return &copied, nil
}

func (r *memoryReportRepository) GetByReporterAndListing(ctx context.Context, reporterID, listingID string) (*entity.Report, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, report := range s.reports {
		if report.ReporterID == reporterID && report.ListingID == listingID {
			copied := *report
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Report", nil)
}

func (r *memoryReportRepository) Update(ctx context.Context, report *entity.Report) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[report.ID]; !ok {
		return errors.NotFound("Report", nil)
	}
	report.UpdatedAt = time.Now()
	copied := *report
	s.reports[report.ID] = &copied
	return nil
}

type memoryFavoriteRepository struct {
	store *MemoryStore
}

func (r *memoryFavoriteRepository) Create(ctx context.Context, favorite *entity.Favorite) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if favorite.ID == "" {
		favorite.ID = uuid.New().String()
	}
	favorite.CreatedAt = time.Now()

	copied := *favorite
	s.favorites[favorite.ID] = &copied
	return nil
}

func (r *memoryFavoriteRepository) GetByUserAndListing(ctx context.Context, userID, listingID string) (*entity.Favorite, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, favorite := range s.favorites {
		if favorite.UserID == userID && favorite.ListingID == listingID {
			copied := *favorite
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Favorite", nil)
}
