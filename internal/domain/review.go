package domain

import (
	"time"
)

// MaxReviewCommentLength caps review comment size.
const MaxReviewCommentLength = 2000

// Review represents a product review. UserID is nil for anonymous
// reviews; DisplayName is what the review is shown under either way.
type Review struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	UserID      *string   `json:"user_id,omitempty"`
	DisplayName string    `json:"display_name"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReviewSummary contains the aggregate rating statistics kept on the
// product row.
type ReviewSummary struct {
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
}
