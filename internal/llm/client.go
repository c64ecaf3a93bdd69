// Package llm provides remote classifier clients and the adapter that
// turns their free-text answers into categorization results.
package llm

import (
	"context"
	"time"
)

// Client is a minimal completion interface over a hosted model. It
// returns the raw assistant text; interpreting that text is the
// caller's job.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds settings for constructing a Client.
type Config struct {
	Provider          string
	APIKey            string
	BaseURL           string
	Model             string
	Temperature       float64
	Timeout           time.Duration
	MaxTokens         int
	RequestsPerMinute int
}
