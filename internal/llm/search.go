package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/reginold/asset-management/internal/model"
)

const (
	tavilyEndpoint       = "https://api.tavily.com/search"
	defaultSearchTimeout = 10 * time.Second
	searchMaxResults     = 3
	searchSnippetRunes   = 200
)

// SearchClient looks up a merchant on the web and returns a short
// context blurb, or an empty string when nothing useful came back.
type SearchClient interface {
	Search(ctx context.Context, query string) (string, error)
}

// TavilySearch implements SearchClient against the Tavily API.
type TavilySearch struct {
	httpClient *http.Client
	apiKey     string
	endpoint   string
	timeout    time.Duration
}

// NewTavilySearch creates a search client. Every request is capped at
// the given timeout regardless of the caller's context; zero or
// negative means ten seconds.
func NewTavilySearch(apiKey string, timeout time.Duration) *TavilySearch {
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	return &TavilySearch{
		apiKey:     apiKey,
		endpoint:   tavilyEndpoint,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search queries Tavily and condenses the hits into one blurb.
func (t *TavilySearch) Search(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	requestBody := map[string]any{
		"api_key":        t.apiKey,
		"query":          query,
		"max_results":    searchMaxResults,
		"search_depth":   "basic",
		"include_answer": true,
	}
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response tavilyResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse search response: %w", err)
	}

	var parts []string
	if response.Answer != "" {
		parts = append(parts, response.Answer)
	}
	for _, r := range response.Results {
		snippet := r.Content
		if runes := []rune(snippet); len(runes) > searchSnippetRunes {
			snippet = string(runes[:searchSnippetRunes])
		}
		parts = append(parts, fmt.Sprintf("%s: %s", r.Title, snippet))
	}
	return strings.Join(parts, "\n"), nil
}

// SearchAugmentedClassifier enriches classification prompts with web
// search context. A failed search degrades to a plain classification
// rather than an error.
type SearchAugmentedClassifier struct {
	inner  *VocabClassifier
	search SearchClient
}

// NewSearchAugmentedClassifier wraps a VocabClassifier with a search
// backend.
func NewSearchAugmentedClassifier(inner *VocabClassifier, search SearchClient) *SearchAugmentedClassifier {
	return &SearchAugmentedClassifier{inner: inner, search: search}
}

// Classify looks the merchant up on the web, then classifies with the
// extra context folded into the merchant description.
func (c *SearchAugmentedClassifier) Classify(ctx context.Context, merchant string) model.MatchResult {
	blurb, err := c.search.Search(ctx, fmt.Sprintf("%s 会社 業種", merchant))
	if err != nil || blurb == "" {
		if err != nil {
			slog.Debug("Merchant search failed, classifying without context", "merchant", merchant, "error", err)
		}
		return c.inner.Classify(ctx, merchant)
	}

	augmented := fmt.Sprintf("%s\n\nWeb context:\n%s", merchant, blurb)
	return c.inner.Classify(ctx, augmented)
}
