package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reginold/asset-management/internal/model"
)

func newTestRuleStore(t *testing.T) (*RuleStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	return NewRuleStore(path), path
}

func writeRules(t *testing.T, path string, rules []model.CategoryRule) {
	t.Helper()
	data, err := json.Marshal(rules)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestNewRuleStoreSeedsDefaults(t *testing.T) {
	store, path := newTestRuleStore(t)

	assert.Greater(t, store.Len(), 0)
	_, err := os.Stat(path)
	assert.NoError(t, err, "seeded rules should be persisted")

	result := store.Apply("amazon co jp")
	assert.Equal(t, "Shopping", result.Category)
	assert.InDelta(t, 0.95, result.Confidence, 0.001)
	assert.Equal(t, "rule_contains", result.Method)
}

func TestNewRuleStoreCorruptFileSeedsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewRuleStore(path)
	assert.Greater(t, store.Len(), 0)

	result := store.Apply("netflix")
	assert.Equal(t, "Entertainment", result.Category)
}

func TestApplyHighestConfidenceWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	now := time.Now()
	writeRules(t, path, []model.CategoryRule{
		{Pattern: "cafe", Category: "Food & Dining", Confidence: 0.6, RuleType: model.RuleContains, CreatedBy: model.SourceLLM, CreatedAt: now},
		{Pattern: "blue cafe", Category: "Entertainment", Confidence: 0.9, RuleType: model.RuleContains, CreatedBy: model.SourceHuman, CreatedAt: now},
	})

	store := NewRuleStore(path)
	result := store.Apply("BLUE CAFE tokyo")

	assert.Equal(t, "Entertainment", result.Category)
	assert.InDelta(t, 0.9, result.Confidence, 0.001)
}

func TestApplyTieGoesToFirstStoredRule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	now := time.Now()
	writeRules(t, path, []model.CategoryRule{
		{Pattern: "market", Category: "Shopping", Confidence: 0.8, RuleType: model.RuleContains, CreatedBy: model.SourceSystem, CreatedAt: now},
		{Pattern: "market", Category: "Food & Dining", Confidence: 0.8, RuleType: model.RuleContains, CreatedBy: model.SourceSystem, CreatedAt: now},
	})

	store := NewRuleStore(path)
	result := store.Apply("central market")

	assert.Equal(t, "Shopping", result.Category)
}

func TestApplyRuleTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	now := time.Now()
	writeRules(t, path, []model.CategoryRule{
		{Pattern: "exact shop", Category: "Shopping", Confidence: 0.9, RuleType: model.RuleExact, CreatedBy: model.SourceHuman, CreatedAt: now},
		{Pattern: `taxi\s+\d+`, Category: "Transportation", Confidence: 0.85, RuleType: model.RuleRegex, CreatedBy: model.SourceHuman, CreatedAt: now},
		{Pattern: "[invalid", Category: "Other", Confidence: 0.99, RuleType: model.RuleRegex, CreatedBy: model.SourceHuman, CreatedAt: now},
	})
	store := NewRuleStore(path)

	tests := []struct {
		name     string
		merchant string
		category string
		method   string
	}{
		{"exact match is case-insensitive", "EXACT SHOP", "Shopping", "rule_exact"},
		{"exact does not match superstring", "exact shop 2", "Unknown", model.MethodNoMatch},
		{"regex match", "TAXI 42", "Transportation", "rule_regex"},
		{"invalid regex rule is skipped", "something else", "Unknown", model.MethodNoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := store.Apply(tt.merchant)
			assert.Equal(t, tt.category, result.Category)
			assert.Equal(t, tt.method, result.Method)
		})
	}
}

func TestApplyIncrementsUsageCount(t *testing.T) {
	store, _ := newTestRuleStore(t)

	store.Apply("netflix")
	store.Apply("netflix")

	stats := store.Stats()
	require.NotEmpty(t, stats.MostUsed)
	assert.Equal(t, "netflix", stats.MostUsed[0].Pattern)
	assert.Equal(t, 2, stats.MostUsed[0].Count)
}

func TestLearnAddsContainsRules(t *testing.T) {
	store, _ := newTestRuleStore(t)
	before := store.Len()

	added := store.Learn("ブルーボトル コーヒー 渋谷", "Food & Dining", model.SourceHuman)

	// 渋谷 is under three runes and never becomes a pattern
	assert.Equal(t, 2, added)
	assert.Equal(t, before+2, store.Len())

	result := store.Apply("ブルーボトル 新宿")
	assert.Equal(t, "Food & Dining", result.Category)
	assert.InDelta(t, 0.6, result.Confidence, 0.001)
}

func TestLearnDeduplicatesPatterns(t *testing.T) {
	store, _ := newTestRuleStore(t)

	first := store.Learn("yoyogi bakery", "Food & Dining", model.SourceHuman)
	second := store.Learn("yoyogi bakery", "Food & Dining", model.SourceHuman)

	assert.Equal(t, 2, first)
	assert.Equal(t, 0, second)
}

func TestLearnSkipsUnlearnableCategories(t *testing.T) {
	store, _ := newTestRuleStore(t)
	before := store.Len()

	assert.Equal(t, 0, store.Learn("mystery merchant", model.CategoryUnknown, model.SourceHuman))
	assert.Equal(t, 0, store.Learn("mystery merchant", model.CategoryOther, model.SourceHuman))
	assert.Equal(t, before, store.Len())
}

func TestLearnWritesLearningLog(t *testing.T) {
	store, _ := newTestRuleStore(t)
	assert.False(t, store.HasLearningData())

	store.Learn("mystery merchant", model.CategoryUnknown, model.SourceHuman)

	// Even unlearnable decisions land in the advisory log
	assert.True(t, store.HasLearningData())
}

func TestRuleStoreSaveRoundTrip(t *testing.T) {
	store, path := newTestRuleStore(t)
	store.Learn("yoyogi bakery", "Food & Dining", model.SourceIndividualHuman)
	require.NoError(t, store.Save())

	reopened := NewRuleStore(path)
	assert.Equal(t, store.Len(), reopened.Len())

	result := reopened.Apply("yoyogi bakery")
	assert.Equal(t, "Food & Dining", result.Category)

	stats := reopened.Stats()
	assert.Equal(t, 2, stats.BySource[string(model.SourceIndividualHuman)])
}
