package entity

import "time"

const (
	ProposalPending  = "pending"
	ProposalAccepted = "accepted"
	ProposalRejected = "rejected"
)

// PriceProposal is a buyer's offer on a negotiable listing. A buyer
// holds at most one pending proposal per listing; a rejected proposal
// may be re-opened with a new price.
type PriceProposal struct {
	ID            string    `json:"id" firestore:"id"`
	ListingID     string    `json:"listing_id" firestore:"listingId"`
	BuyerID       string    `json:"buyer_id" firestore:"buyerId"`
	SellerID      string    `json:"seller_id" firestore:"sellerId"`
	ProposedPrice float64   `json:"proposed_price" firestore:"proposedPrice"`
	Status        string    `json:"status" firestore:"status"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time `json:"updated_at" firestore:"updatedAt"`
}
