package entity

import "time"

const (
	ListingAvailable = "available"
	ListingReserved  = "reserved"
	ListingSold      = "sold"
)

// Listing carries only what the messaging core needs from the listing
// subsystem: ownership, price and status. The full listing data model
// lives elsewhere.
type Listing struct {
	ID         string    `json:"id" firestore:"id"`
	OwnerID    string    `json:"owner_id" firestore:"ownerId"`
	Title      string    `json:"title" firestore:"title"`
	Price      float64   `json:"price" firestore:"price"`
	Status     string    `json:"status" firestore:"status"`
	Negotiable bool      `json:"negotiable" firestore:"negotiable"`
	Hidden     bool      `json:"hidden" firestore:"hidden"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" firestore:"updatedAt"`
}
