package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reginold/asset-management/internal/model"
)

func unreviewed(merchants ...string) []model.UnknownMerchant {
	entries := make([]model.UnknownMerchant, len(merchants))
	for i, m := range merchants {
		entries[i] = model.UnknownMerchant{Merchant: m}
	}
	return entries
}

func TestBuildQueueOrdersByTotalAmount(t *testing.T) {
	stats := map[string]model.MerchantStats{
		"small":  {TotalAmount: 300, Count: 1},
		"large":  {TotalAmount: 12000, Count: 4},
		"medium": {TotalAmount: 2500, Count: 2},
	}

	queue := BuildQueue(unreviewed("small", "large", "medium"), stats)

	require.Len(t, queue, 3)
	assert.Equal(t, "large", queue[0].Merchant)
	assert.Equal(t, "medium", queue[1].Merchant)
	assert.Equal(t, "small", queue[2].Merchant)
	assert.Equal(t, 4, queue[0].Count)
}

func TestBuildQueueUnknownAmountsKeepLedgerOrder(t *testing.T) {
	stats := map[string]model.MerchantStats{
		"known": {TotalAmount: 500, Count: 1},
	}

	queue := BuildQueue(unreviewed("first", "known", "second"), stats)

	assert.Equal(t, "known", queue[0].Merchant)
	assert.Equal(t, "first", queue[1].Merchant)
	assert.Equal(t, "second", queue[2].Merchant)
}

func TestGroupPattern(t *testing.T) {
	tests := []struct {
		name     string
		merchant string
		want     string
	}{
		{"first token lowercased", "AMAZON CO JP", "amazon"},
		{"digits stripped", "AMAZON123 CO JP", "amazon"},
		{"separator glyphs stripped", "GO-TAXI＊TOKYO", "go"},
		{"japanese name kept whole", "セブンイレブン 渋谷店", "セブンイレブン"},
		{"capped at ten runes", "abcdefghijklmnop", "abcdefghij"},
		{"pure noise groups as misc", "123-456*789", "misc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GroupPattern(tt.merchant))
		})
	}
}

func TestGroupCandidatesBucketsAndOrders(t *testing.T) {
	queue := []Candidate{
		{Merchant: "AMAZON CO JP", TotalAmount: 1200},
		{Merchant: "東京ガス", TotalAmount: 8400},
		{Merchant: "AMAZON MKTP", TotalAmount: 900},
	}

	groups := GroupCandidates(queue)

	require.Len(t, groups, 2)
	// 東京ガス (8400) outweighs the amazon bucket (2100)
	assert.Equal(t, "東京ガス", groups[0].Pattern)
	assert.InDelta(t, 8400, groups[0].TotalAmount, 0.001)

	assert.Equal(t, "amazon", groups[1].Pattern)
	require.Len(t, groups[1].Candidates, 2)
	assert.Equal(t, "AMAZON CO JP", groups[1].Candidates[0].Merchant)
	assert.Equal(t, "AMAZON MKTP", groups[1].Candidates[1].Merchant)
	assert.InDelta(t, 2100, groups[1].TotalAmount, 0.001)
}

func TestGroupCandidatesZeroAmountsKeepFirstSeenOrder(t *testing.T) {
	queue := []Candidate{
		{Merchant: "alpha one"},
		{Merchant: "beta two"},
		{Merchant: "alpha three"},
	}

	groups := GroupCandidates(queue)

	require.Len(t, groups, 2)
	assert.Equal(t, "alpha", groups[0].Pattern)
	assert.Equal(t, "beta", groups[1].Pattern)
}
