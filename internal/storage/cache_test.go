package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*CategoryCache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.json")
	return NewCategoryCache(path), path
}

func TestCacheLookupIsExact(t *testing.T) {
	cache, _ := newTestCache(t)
	cache.Set("AMAZON CO JP", "Shopping")

	category, ok := cache.Lookup("AMAZON CO JP")
	require.True(t, ok)
	assert.Equal(t, "Shopping", category)

	// Raw keys, no normalization
	_, ok = cache.Lookup("amazon co jp")
	assert.False(t, ok)
}

func TestCacheFuzzyLookup(t *testing.T) {
	cache, _ := newTestCache(t)
	cache.Set("AMAZON CO JP", "Shopping")
	cache.Set("TOKYO GAS", "Utilities")

	match, ok := cache.FuzzyLookup("AMAZON CO JPN", 85)
	require.True(t, ok)
	assert.Equal(t, "AMAZON CO JP", match.Key)
	assert.Equal(t, "Shopping", match.Category)
	assert.GreaterOrEqual(t, match.Score, 85)

	_, ok = cache.FuzzyLookup("completely unrelated merchant", 85)
	assert.False(t, ok)
}

func TestCacheFuzzyLookupTieGoesToFirstInserted(t *testing.T) {
	cache, _ := newTestCache(t)
	cache.Set("abcd1", "Shopping")
	cache.Set("abcd2", "Utilities")

	match, ok := cache.FuzzyLookup("abcd3", 70)
	require.True(t, ok)
	assert.Equal(t, "abcd1", match.Key)
	assert.Equal(t, "Shopping", match.Category)
}

func TestCacheOrderSurvivesSaveLoad(t *testing.T) {
	cache, path := newTestCache(t)
	keys := []string{"zeta", "alpha", "ミドル", "beta"}
	for _, key := range keys {
		cache.Set(key, "Shopping")
	}
	require.NoError(t, cache.Save())

	reopened := NewCategoryCache(path)
	assert.Equal(t, keys, reopened.Keys())
	assert.Equal(t, len(keys), reopened.Len())
}

func TestCacheJapaneseKeysStayReadable(t *testing.T) {
	cache, path := newTestCache(t)
	cache.Set("東京ガス", "Utilities")
	require.NoError(t, cache.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "東京ガス")
}

func TestCacheCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("[1,2,3]"), 0o644))

	cache := NewCategoryCache(path)
	assert.Equal(t, 0, cache.Len())
}

func TestCacheSetUpdatesWithoutReordering(t *testing.T) {
	cache, _ := newTestCache(t)
	cache.Set("first", "Shopping")
	cache.Set("second", "Utilities")
	cache.Set("first", "Entertainment")

	category, ok := cache.Lookup("first")
	require.True(t, ok)
	assert.Equal(t, "Entertainment", category)
	assert.Equal(t, []string{"first", "second"}, cache.Keys())
}
