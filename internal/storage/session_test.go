package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reginold/asset-management/internal/model"
)

func TestSessionLoadMissingStartsFresh(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))

	session := store.Load()
	require.NotNil(t, session)
	assert.Zero(t, session.MerchantsReviewed)
	assert.Empty(t, session.DecisionsMade)
	assert.False(t, session.StartedAt.IsZero())
}

func TestSessionLoadCorruptStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	session := NewSessionStore(path).Load()
	require.NotNil(t, session)
	assert.Zero(t, session.MerchantsReviewed)
}

func TestSessionSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewSessionStore(path)

	session := model.NewReviewSession()
	session.RecordDecision("東京ガス", "Utilities", model.SourceIndividualHuman)
	session.RecordPattern("amazon", "Shopping", 3)
	session.MerchantsReviewed = 4
	require.NoError(t, store.Save(session))

	loaded := store.Load()
	assert.Equal(t, 4, loaded.MerchantsReviewed)
	require.Len(t, loaded.DecisionsMade, 1)
	assert.Equal(t, "東京ガス", loaded.DecisionsMade[0].Merchant)
	assert.Equal(t, string(model.SourceIndividualHuman), loaded.DecisionsMade[0].Source)
	require.Len(t, loaded.PatternsLearned, 1)
	assert.Equal(t, 3, loaded.PatternsLearned[0].MerchantCount)
}

func TestSessionReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewSessionStore(path)

	require.NoError(t, store.Save(model.NewReviewSession()))
	require.NoError(t, store.Reset())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Resetting again is fine
	assert.NoError(t, store.Reset())
}
