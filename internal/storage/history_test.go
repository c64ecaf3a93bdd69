package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reginold/asset-management/internal/model"
)

func newTestHistoryStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := NewHistoryStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testTransaction(day int, merchant string, amount float64) model.Transaction {
	t := model.Transaction{
		Date:     time.Date(2026, 7, day, 0, 0, 0, 0, time.UTC),
		Merchant: merchant,
		Amount:   amount,
	}
	t.Hash = t.GenerateHash()
	return t
}

func TestHistorySaveDeduplicates(t *testing.T) {
	store := newTestHistoryStore(t)
	ctx := context.Background()

	batch := []model.Transaction{
		testTransaction(1, "AMAZON CO JP", 1200),
		testTransaction(2, "東京ガス", 8400),
	}
	require.NoError(t, store.SaveTransactions(ctx, batch))
	require.NoError(t, store.SaveTransactions(ctx, batch))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestHistoryMerchantStatsAggregates(t *testing.T) {
	store := newTestHistoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTransactions(ctx, []model.Transaction{
		testTransaction(1, "AMAZON CO JP", 1200),
		testTransaction(2, "AMAZON CO JP", 800),
		testTransaction(3, "東京ガス", 8400),
	}))

	stats, err := store.MerchantStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.InDelta(t, 2000, stats["AMAZON CO JP"].TotalAmount, 0.001)
	assert.Equal(t, 2, stats["AMAZON CO JP"].Count)
	assert.InDelta(t, 8400, stats["東京ガス"].TotalAmount, 0.001)
	assert.Equal(t, 1, stats["東京ガス"].Count)
}

func TestHistoryEmptyBatchIsNoop(t *testing.T) {
	store := newTestHistoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveTransactions(ctx, nil))
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
