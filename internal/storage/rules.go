package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/reginold/asset-management/internal/model"
)

// highConfidenceSeeds are hand-picked overrides for merchants whose seed
// keyword alone is too weak or ambiguous.
var highConfidenceSeeds = []struct {
	pattern    string
	category   string
	confidence float64
}{
	{"amazon", "Shopping", 0.95},
	{"アマゾン", "Shopping", 0.95},
	{"東京ガス", "Utilities", 0.99},
	{"go(タクシー", "Transportation", 0.95},
	{"apple com", "Digital Services", 0.90},
	{"ユニクロ", "Clothing", 0.95},
	{"netflix", "Entertainment", 0.95},
}

// RuleStore persists and queries the ordered list of categorization rules.
// It fails soft on load: a missing or corrupt rules file yields the seeded
// default set, never an error.
type RuleStore struct {
	regexCache   map[string]*regexp.Regexp
	path         string
	learningPath string
	rules        []model.CategoryRule
}

// NewRuleStore opens the rule store at path, seeding defaults if no valid
// store exists yet.
func NewRuleStore(path string) *RuleStore {
	s := &RuleStore{
		path:         path,
		learningPath: strings.TrimSuffix(path, ".json") + "_learning.json",
		regexCache:   make(map[string]*regexp.Regexp),
	}
	s.load()
	return s
}

func (s *RuleStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read rules file, seeding defaults", "path", s.path, "error", err)
		}
		s.seed()
		return
	}

	var rules []model.CategoryRule
	if err := json.Unmarshal(data, &rules); err != nil {
		slog.Warn("Failed to parse rules file, seeding defaults", "path", s.path, "error", err)
		s.seed()
		return
	}

	s.rules = rules
}

// seed builds the default rule set: one "contains" rule per vocabulary
// keyword at 0.8, plus the high-confidence overrides.
func (s *RuleStore) seed() {
	now := time.Now()
	var rules []model.CategoryRule

	for _, category := range model.CategoryNames() {
		for _, keyword := range model.CategoryKeywords[category] {
			rules = append(rules, model.CategoryRule{
				Pattern:    strings.ToLower(keyword),
				Category:   category,
				Confidence: 0.8,
				RuleType:   model.RuleContains,
				CreatedBy:  model.SourceSystem,
				CreatedAt:  now,
			})
		}
	}

	for _, seed := range highConfidenceSeeds {
		rules = append(rules, model.CategoryRule{
			Pattern:    strings.ToLower(seed.pattern),
			Category:   seed.category,
			Confidence: seed.confidence,
			RuleType:   model.RuleContains,
			CreatedBy:  model.SourceSystem,
			CreatedAt:  now,
		})
	}

	s.rules = rules
	if err := s.Save(); err != nil {
		slog.Warn("Failed to persist seeded rules", "error", err)
	}
}

// Save overwrites the persisted store atomically.
func (s *RuleStore) Save() error {
	return writeJSONAtomic(s.path, s.rules)
}

// Apply matches merchant against every rule and returns the single
// highest-confidence match; ties go to the first rule in stored order.
// The winning rule's usage count is incremented as an observable side
// effect of the query.
func (s *RuleStore) Apply(merchant string) model.MatchResult {
	lower := strings.ToLower(merchant)

	best := -1
	bestConfidence := 0.0

	for i := range s.rules {
		rule := &s.rules[i]

		var matched bool
		switch rule.RuleType {
		case model.RuleExact:
			matched = lower == strings.ToLower(rule.Pattern)
		case model.RuleContains:
			matched = strings.Contains(lower, strings.ToLower(rule.Pattern))
		case model.RuleRegex:
			re := s.compiled(rule.Pattern)
			if re == nil {
				continue
			}
			matched = re.MatchString(lower)
		}

		if matched && rule.Confidence > bestConfidence {
			best = i
			bestConfidence = rule.Confidence
		}
	}

	if best < 0 {
		return model.NoMatch()
	}

	winner := &s.rules[best]
	winner.UsageCount++

	return model.MatchResult{
		Category:   winner.Category,
		Confidence: winner.Confidence,
		Method:     "rule_" + string(winner.RuleType),
	}
}

// compiled returns the case-insensitive regex for pattern, or nil if the
// pattern does not compile. Invalid patterns are skipped, not fatal.
func (s *RuleStore) compiled(pattern string) *regexp.Regexp {
	if re, ok := s.regexCache[pattern]; ok {
		return re
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		slog.Warn("Skipping invalid regex rule", "pattern", pattern, "error", err)
		re = nil
	}
	s.regexCache[pattern] = re
	return re
}

// Learn generalizes a confirmed categorization into new "contains" rules,
// one per extracted keyword not already covered by an identical
// (pattern, category) pair. Unknown and Other are never generalized.
// Returns the number of rules added.
func (s *RuleStore) Learn(merchant, category string, source model.RuleSource) int {
	added := 0

	if model.IsLearnable(category) {
		for _, keyword := range ExtractKeywords(merchant) {
			pattern := strings.ToLower(keyword)
			if s.hasRule(pattern, category) {
				continue
			}
			s.rules = append(s.rules, model.CategoryRule{
				Pattern:    pattern,
				Category:   category,
				Confidence: 0.6,
				RuleType:   model.RuleContains,
				CreatedBy:  source,
				CreatedAt:  time.Now(),
			})
			added++
		}
	}

	s.appendLearning(merchant, category, source)
	return added
}

func (s *RuleStore) hasRule(pattern, category string) bool {
	for i := range s.rules {
		if s.rules[i].Pattern == pattern && s.rules[i].Category == category {
			return true
		}
	}
	return false
}

// learningEntry is one line of the append-only learning log, kept for
// offline analysis of how the rule set evolves.
type learningEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Merchant  string    `json:"merchant"`
	Category  string    `json:"category"`
	Source    string    `json:"source"`
}

// appendLearning records the categorization in the learning log. The log
// is advisory; failures are logged and ignored.
func (s *RuleStore) appendLearning(merchant, category string, source model.RuleSource) {
	var entries []learningEntry
	if data, err := os.ReadFile(s.learningPath); err == nil {
		if err := json.Unmarshal(data, &entries); err != nil {
			slog.Warn("Failed to parse learning log, starting fresh", "error", err)
			entries = nil
		}
	}

	entries = append(entries, learningEntry{
		Merchant:  merchant,
		Category:  category,
		Source:    string(source),
		Timestamp: time.Now(),
	})

	if err := writeJSONAtomic(s.learningPath, entries); err != nil {
		slog.Warn("Failed to write learning log", "error", err)
	}
}

// HasLearningData reports whether any categorizations have been logged.
func (s *RuleStore) HasLearningData() bool {
	_, err := os.Stat(s.learningPath)
	return err == nil
}

// Rules returns a copy of the current rule list in stored order.
func (s *RuleStore) Rules() []model.CategoryRule {
	rules := make([]model.CategoryRule, len(s.rules))
	copy(rules, s.rules)
	return rules
}

// Len returns the number of stored rules.
func (s *RuleStore) Len() int {
	return len(s.rules)
}

// RuleUsage pairs a rule pattern with its usage count.
type RuleUsage struct {
	Pattern string
	Count   int
}

// RuleStats summarizes the rule store for reporting.
type RuleStats struct {
	BySource        map[string]int
	ByCategory      map[string]int
	MostUsed        []RuleUsage
	TotalRules      int
	HasLearningData bool
}

// Stats computes aggregate statistics over the stored rules.
func (s *RuleStore) Stats() RuleStats {
	stats := RuleStats{
		TotalRules:      len(s.rules),
		BySource:        make(map[string]int),
		ByCategory:      make(map[string]int),
		HasLearningData: s.HasLearningData(),
	}

	for i := range s.rules {
		rule := &s.rules[i]
		stats.BySource[string(rule.CreatedBy)]++
		stats.ByCategory[rule.Category]++
		if rule.UsageCount > 0 {
			stats.MostUsed = append(stats.MostUsed, RuleUsage{
				Pattern: rule.Pattern,
				Count:   rule.UsageCount,
			})
		}
	}

	sort.SliceStable(stats.MostUsed, func(i, j int) bool {
		return stats.MostUsed[i].Count > stats.MostUsed[j].Count
	})
	if len(stats.MostUsed) > 10 {
		stats.MostUsed = stats.MostUsed[:10]
	}

	return stats
}

// String implements fmt.Stringer for quick logging.
func (s RuleStats) String() string {
	return fmt.Sprintf("rules=%d sources=%d categories=%d", s.TotalRules, len(s.BySource), len(s.ByCategory))
}
