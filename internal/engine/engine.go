package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/reginold/asset-management/internal/model"
	"github.com/reginold/asset-management/internal/storage"
)

// rule matches below this confidence defer to the remote classifier
const ruleConfidenceThreshold = 0.7

// Engine resolves merchant names to categories. Resolution order: exact
// cache hit, fuzzy cache hit, stored rules, remote classifier. Cheaper
// and more trusted sources always win; the classifier only runs when
// rules cannot answer confidently.
type Engine struct {
	rules          *storage.RuleStore
	cache          *storage.CategoryCache
	classifier     Classifier
	fuzzyThreshold int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClassifier attaches a remote classification backend. Without one
// the engine is rules-and-cache only.
func WithClassifier(c Classifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// WithFuzzyThreshold overrides the minimum 0-100 similarity score for
// fuzzy cache hits.
func WithFuzzyThreshold(threshold int) Option {
	return func(e *Engine) { e.fuzzyThreshold = threshold }
}

// New creates an Engine over the given rule store and category cache.
func New(rules *storage.RuleStore, cache *storage.CategoryCache, opts ...Option) *Engine {
	e := &Engine{
		rules:          rules,
		cache:          cache,
		fuzzyThreshold: storage.DefaultFuzzyThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Categorize resolves a single raw merchant description. It never
// returns an error; every outcome, including classifier failure, is a
// MatchResult whose Method says what happened.
func (e *Engine) Categorize(ctx context.Context, merchant string) model.MatchResult {
	if strings.TrimSpace(merchant) == "" {
		return model.MatchResult{
			Category:   model.CategoryUnknown,
			Confidence: 0,
			Method:     model.MethodInvalidInput,
		}
	}

	// Cache lookups use the raw description. Prior decisions were keyed
	// on exactly what the statement said.
	if category, ok := e.cache.Lookup(merchant); ok {
		return model.MatchResult{
			Category:   category,
			Confidence: 1.0,
			Method:     model.MethodCacheExact,
		}
	}
	if match, ok := e.cache.FuzzyLookup(merchant, e.fuzzyThreshold); ok {
		slog.Debug("Fuzzy cache hit",
			"merchant", merchant,
			"matched", match.Key,
			"score", match.Score)
		return model.MatchResult{
			Category:   match.Category,
			Confidence: float64(match.Score) / 100,
			Method:     model.MethodCacheFuzzy,
		}
	}

	cleaned := CleanMerchantName(merchant)
	ruleResult := e.rules.Apply(cleaned)
	if ruleResult.Confidence > ruleConfidenceThreshold {
		return ruleResult
	}

	if e.classifier != nil {
		llmResult := e.classifier.Classify(ctx, cleaned)
		if llmResult.Confidence > ruleResult.Confidence {
			if learned := e.rules.Learn(cleaned, llmResult.Category, model.SourceLLM); learned > 0 {
				slog.Debug("Learned keywords from classifier result",
					"merchant", cleaned,
					"category", llmResult.Category,
					"rules", learned)
			}
			return llmResult
		}
	}

	if ruleResult.Confidence > 0 {
		return ruleResult
	}
	return model.NoMatch()
}

// CategorizeBatch resolves a batch of raw merchant descriptions,
// deduplicating repeated names. Learned rules are persisted once at the
// end; a persistence failure is the only error this can return. The
// progress callback, if non-nil, runs after each unique merchant.
func (e *Engine) CategorizeBatch(ctx context.Context, merchants []string, progress func(merchant string, result model.MatchResult)) (map[string]model.MatchResult, error) {
	results := make(map[string]model.MatchResult, len(merchants))
	for _, merchant := range merchants {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if _, done := results[merchant]; done {
			continue
		}
		result := e.Categorize(ctx, merchant)
		results[merchant] = result
		if progress != nil {
			progress(merchant, result)
		}
	}

	if err := e.rules.Save(); err != nil {
		return results, err
	}
	return results, nil
}

// Learn records a human or classifier decision as durable rules, after
// normalizing the merchant name. It returns the number of rules added.
func (e *Engine) Learn(merchant, category string, source model.RuleSource) int {
	return e.rules.Learn(CleanMerchantName(merchant), category, source)
}

// SaveRules persists the rule store, including usage counters.
func (e *Engine) SaveRules() error {
	return e.rules.Save()
}

// Stats reports on the current rule store.
func (e *Engine) Stats() storage.RuleStats {
	return e.rules.Stats()
}

// CacheSize returns the number of memorized prior decisions.
func (e *Engine) CacheSize() int {
	return e.cache.Len()
}
