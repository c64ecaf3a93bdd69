package model

import "time"

// Decision is one committed review outcome, kept for the session audit log.
type Decision struct {
	Timestamp time.Time `json:"timestamp"`
	Merchant  string    `json:"merchant"`
	Category  string    `json:"category"`
	Source    string    `json:"source"`
}

// LearnedPattern records a batch decision applied to a merchant group.
type LearnedPattern struct {
	Timestamp     time.Time `json:"timestamp"`
	Pattern       string    `json:"pattern"`
	Category      string    `json:"category"`
	MerchantCount int       `json:"merchant_count"`
}

// ReviewSession accumulates the state of one review run. It is persisted
// only at explicit checkpoints; individual decisions are persisted to the
// underlying stores as they are made.
type ReviewSession struct {
	StartedAt         time.Time        `json:"started_at"`
	DecisionsMade     []Decision       `json:"decisions_made"`
	PatternsLearned   []LearnedPattern `json:"patterns_learned"`
	MerchantsReviewed int              `json:"merchants_reviewed"`
}

// NewReviewSession returns an empty session started now.
func NewReviewSession() *ReviewSession {
	return &ReviewSession{
		StartedAt:       time.Now(),
		DecisionsMade:   []Decision{},
		PatternsLearned: []LearnedPattern{},
	}
}

// RecordDecision appends a decision to the audit log.
func (s *ReviewSession) RecordDecision(merchant, category string, source RuleSource) {
	s.DecisionsMade = append(s.DecisionsMade, Decision{
		Merchant:  merchant,
		Category:  category,
		Source:    string(source),
		Timestamp: time.Now(),
	})
}

// RecordPattern appends a learned group pattern to the audit log.
func (s *ReviewSession) RecordPattern(pattern, category string, merchantCount int) {
	s.PatternsLearned = append(s.PatternsLearned, LearnedPattern{
		Pattern:       pattern,
		Category:      category,
		MerchantCount: merchantCount,
		Timestamp:     time.Now(),
	})
}

// CategoryBreakdown tallies decisions by assigned category.
func (s *ReviewSession) CategoryBreakdown() map[string]int {
	breakdown := make(map[string]int)
	for _, d := range s.DecisionsMade {
		breakdown[d.Category]++
	}
	return breakdown
}
