package entity

import "time"

// Notification types. Each triggering action produces exactly one
// record of exactly one type.
const (
	NotificationNewMessage       = "new_message"
	NotificationFavorited        = "product_favorited"
	NotificationListingStatus    = "listing_status"
	NotificationPriceProposal    = "price_proposal"
	NotificationProposalAccepted = "proposal_accepted"
	NotificationProposalRejected = "proposal_rejected"
	NotificationReportOutcome    = "report_outcome"
)

// Notification is one discrete inbox entry for a single recipient.
// Records are append-only; only the read flag ever changes, and only
// false -> true.
type Notification struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"user_id" firestore:"userId"`
	Type      string    `json:"type" firestore:"type"`
	Title     string    `json:"title" firestore:"title"`
	Body      string    `json:"body" firestore:"body"`
	Link      string    `json:"link,omitempty" firestore:"link,omitempty"`
	Read      bool      `json:"read" firestore:"read"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
