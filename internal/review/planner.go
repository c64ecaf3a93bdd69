// Package review plans and drives the human review of merchants that
// automatic categorization could not settle.
package review

import (
	"regexp"
	"sort"
	"strings"

	"github.com/reginold/asset-management/internal/model"
)

// Candidate is one unreviewed merchant queued for a human verdict,
// annotated with its spending weight from the transaction history and
// the engine's current best guess.
type Candidate struct {
	Merchant    string
	Guess       model.MatchResult
	TotalAmount float64
	Count       int
}

// Group bundles candidates that look like the same vendor, so one
// verdict can settle all of them.
type Group struct {
	Pattern     string
	Candidates  []Candidate
	TotalAmount float64
}

// BuildQueue annotates unreviewed merchants with their spending stats
// and orders them by total amount, largest first. Merchants absent from
// the history sort last, keeping their queued order.
func BuildQueue(unreviewed []model.UnknownMerchant, stats map[string]model.MerchantStats) []Candidate {
	queue := make([]Candidate, 0, len(unreviewed))
	for _, entry := range unreviewed {
		c := Candidate{Merchant: entry.Merchant}
		if s, ok := stats[entry.Merchant]; ok {
			c.TotalAmount = s.TotalAmount
			c.Count = s.Count
		}
		queue = append(queue, c)
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].TotalAmount > queue[j].TotalAmount
	})
	return queue
}

var patternNoiseRe = regexp.MustCompile(`[0-9\-\*＊・．]`)

const patternMaxRunes = 10

// GroupPattern reduces a merchant name to a short grouping key: digits
// and separator glyphs go, then the first whitespace token, capped at
// ten runes. Names that reduce to nothing group under "misc".
func GroupPattern(merchant string) string {
	stripped := patternNoiseRe.ReplaceAllString(merchant, " ")
	fields := strings.Fields(stripped)
	if len(fields) == 0 {
		return "misc"
	}
	token := strings.ToLower(fields[0])
	if runes := []rune(token); len(runes) > patternMaxRunes {
		token = string(runes[:patternMaxRunes])
	}
	return token
}

// GroupCandidates buckets an ordered queue by grouping key. Groups keep
// first-seen order among equals and sort by combined spending, largest
// first; candidates inside a group keep their queue order.
func GroupCandidates(queue []Candidate) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, c := range queue {
		pattern := GroupPattern(c.Merchant)
		i, ok := index[pattern]
		if !ok {
			i = len(groups)
			index[pattern] = i
			groups = append(groups, Group{Pattern: pattern})
		}
		groups[i].Candidates = append(groups[i].Candidates, c)
		groups[i].TotalAmount += c.TotalAmount
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].TotalAmount > groups[j].TotalAmount
	})
	return groups
}
