package entity

import "time"

// Conversation is the unique buyer/seller/listing channel messages flow
// through. Identity is immutable once created; at most one conversation
// exists per (buyer, seller, listing) triple.
type Conversation struct {
	ID             string    `json:"id" firestore:"id"`
	BuyerID        string    `json:"buyer_id" firestore:"buyerId"`
	SellerID       string    `json:"seller_id" firestore:"sellerId"`
	ListingID      string    `json:"listing_id" firestore:"listingId"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
	LastActivityAt time.Time `json:"last_activity_at" firestore:"lastActivityAt"`
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID string) bool {
	return userID == c.BuyerID || userID == c.SellerID
}

// OtherParticipant returns the counterpart of userID, or "" if userID
// is not a participant.
func (c *Conversation) OtherParticipant(userID string) string {
	switch userID {
	case c.BuyerID:
		return c.SellerID
	case c.SellerID:
		return c.BuyerID
	}
	return ""
}
