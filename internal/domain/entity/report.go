package entity

import "time"

const (
	ReportOpen     = "open"
	ReportReviewed = "reviewed"
	ReportResolved = "resolved"
)

type Report struct {
	ID          string    `json:"id" firestore:"id"`
	ListingID   string    `json:"listing_id" firestore:"listingId"`
	ReporterID  string    `json:"reporter_id" firestore:"reporterId"`
	Reason      string    `json:"reason" firestore:"reason"`
	Description string    `json:"description,omitempty" firestore:"description,omitempty"`
	Status      string    `json:"status" firestore:"status"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}
