package llm

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/reginold/asset-management/internal/common"
	"github.com/reginold/asset-management/internal/model"
)

// Confidence assigned to each way a model answer can resolve to a
// category. An exact vocabulary answer is trusted most, a substring
// match less, and a fallback to Other least.
const (
	exactAnswerConfidence    = 0.75
	fuzzyAnswerConfidence    = 0.70
	fallbackAnswerConfidence = 0.60
)

// Reasoning models wrap their answer in a think block.
var thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// VocabClassifier turns a completion client into a categorizer over a
// closed category vocabulary. Whatever the model says is forced onto
// the vocabulary; a model can never invent a category, and a transport
// failure can never surface as an error.
type VocabClassifier struct {
	client     Client
	categories []string
}

// NewVocabClassifier wraps client with the given category vocabulary.
// If categories is empty, the built-in vocabulary is used.
func NewVocabClassifier(client Client, categories []string) *VocabClassifier {
	if len(categories) == 0 {
		categories = model.CategoryNames()
	}
	return &VocabClassifier{client: client, categories: categories}
}

// Classify asks the model for a category and folds the answer onto the
// vocabulary. Errors degrade to an Unknown result with zero confidence.
func (c *VocabClassifier) Classify(ctx context.Context, merchant string) model.MatchResult {
	prompt := c.buildPrompt(merchant)

	var answer string
	err := common.WithRetry(ctx, func() error {
		var completeErr error
		answer, completeErr = c.client.Complete(ctx, prompt)
		return completeErr
	}, common.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: 15 * time.Second})
	if err != nil {
		slog.Warn("Remote classification failed", "merchant", merchant, "error", err)
		return model.MatchResult{
			Category:   model.CategoryUnknown,
			Confidence: 0,
			Method:     model.MethodLLMError,
		}
	}

	return c.resolve(answer)
}

func (c *VocabClassifier) buildPrompt(merchant string) string {
	return fmt.Sprintf(
		"Categorize this merchant into exactly one of the following categories.\n\n"+
			"Merchant: %s\n\nCategories: %s\n\n"+
			"Answer with the category name only.",
		merchant, strings.Join(c.categories, ", "))
}

// resolve maps a raw model answer onto the vocabulary: exact name,
// then a category name contained in the answer (vocabulary order, so
// repeated runs resolve identically), then Other.
func (c *VocabClassifier) resolve(answer string) model.MatchResult {
	cleaned := cleanAnswer(answer)

	for _, category := range c.categories {
		if strings.EqualFold(cleaned, category) {
			return model.MatchResult{
				Category:   category,
				Confidence: exactAnswerConfidence,
				Method:     model.MethodLLM,
			}
		}
	}

	lower := strings.ToLower(cleaned)
	for _, category := range c.categories {
		if strings.Contains(lower, strings.ToLower(category)) {
			return model.MatchResult{
				Category:   category,
				Confidence: fuzzyAnswerConfidence,
				Method:     model.MethodLLMFuzzy,
			}
		}
	}

	slog.Debug("Model answer outside vocabulary", "answer", cleaned)
	return model.MatchResult{
		Category:   model.CategoryOther,
		Confidence: fallbackAnswerConfidence,
		Method:     model.MethodLLMFallback,
	}
}

func cleanAnswer(answer string) string {
	cleaned := thinkBlockRe.ReplaceAllString(answer, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, "\"'`")
	cleaned = strings.TrimSuffix(cleaned, ".")
	return strings.TrimSpace(cleaned)
}
