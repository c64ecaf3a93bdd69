// Package model defines the core data structures for the asset application.
package model

import "time"

// RuleType determines how a rule pattern is matched against a merchant name.
type RuleType string

// Rule type constants.
const (
	RuleExact    RuleType = "exact"
	RuleContains RuleType = "contains"
	RuleRegex    RuleType = "regex"
)

// RuleSource indicates how a categorization rule or decision was created.
type RuleSource string

const (
	// SourceSystem indicates a rule seeded from the built-in keyword table.
	SourceSystem RuleSource = "system"
	// SourceHuman indicates a rule created from a human decision.
	SourceHuman RuleSource = "human"
	// SourceLLM indicates a rule learned from a remote classifier result.
	SourceLLM RuleSource = "llm"
	// SourceBatchHuman indicates a decision applied to a whole merchant group.
	SourceBatchHuman RuleSource = "batch_human"
	// SourceIndividualHuman indicates a decision made for a single merchant.
	SourceIndividualHuman RuleSource = "individual_human"
)

// CategoryRule maps a merchant pattern to a category with a confidence
// and provenance metadata.
type CategoryRule struct {
	CreatedAt  time.Time  `json:"created_at"`
	Pattern    string     `json:"pattern"`
	Category   string     `json:"category"`
	RuleType   RuleType   `json:"rule_type"`
	CreatedBy  RuleSource `json:"created_by"`
	Confidence float64    `json:"confidence"`
	UsageCount int        `json:"usage_count"`
}

// Categorization methods reported in MatchResult.Method. Rule matches use
// "rule_" + rule type ("rule_exact", "rule_contains", "rule_regex").
const (
	MethodInvalidInput = "invalid_input"
	MethodNoMatch      = "no_match"
	MethodCacheExact   = "cache_exact"
	MethodCacheFuzzy   = "cache_fuzzy"
	MethodLLM          = "llm"
	MethodLLMFuzzy     = "llm_fuzzy"
	MethodLLMFallback  = "llm_fallback"
	MethodLLMError     = "llm_error"
)

// MatchResult is the outcome of categorizing a single merchant.
type MatchResult struct {
	Category   string
	Method     string
	Confidence float64
}

// NoMatch returns the terminal result for a merchant nothing could categorize.
func NoMatch() MatchResult {
	return MatchResult{Category: CategoryUnknown, Confidence: 0, Method: MethodNoMatch}
}
