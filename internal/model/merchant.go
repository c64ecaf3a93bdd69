package model

import "time"

// UnknownMerchant tracks a merchant that could not be confidently
// categorized and is queued for human review.
type UnknownMerchant struct {
	DateAdded         time.Time  `json:"date_added"`
	DateReviewed      *time.Time `json:"date_reviewed,omitempty"`
	Merchant          string     `json:"-"`
	SuggestedCategory string     `json:"suggested_category"`
	ReviewSource      string     `json:"review_source,omitempty"`
	HumanReviewed     bool       `json:"human_reviewed"`
}

// MerchantStats aggregates transaction history for a single merchant.
type MerchantStats struct {
	TotalAmount float64
	Count       int
}
