package llm

import (
	"fmt"
	"strings"
)

// NewClient creates a completion client for the configured provider.
// The "openai" provider covers any chat-completions-compatible host,
// including SambaNova through BaseURL.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai", "sambanova":
		return newOpenAIClient(cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
