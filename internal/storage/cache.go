package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// FuzzyMatch is a near-duplicate hit from the category cache.
type FuzzyMatch struct {
	Key      string
	Category string
	Score    int
}

// DefaultFuzzyThreshold is the minimum 0-100 similarity score for a fuzzy
// cache hit.
const DefaultFuzzyThreshold = 85

// CategoryCache memorizes exact prior decisions as a flat raw
// description → category mapping. Keys are deliberately unnormalized so a
// cache hit is zero-ambiguity. Iteration order is insertion order and
// survives save/load, which keeps fuzzy tie-breaking deterministic.
type CategoryCache struct {
	entries map[string]string
	path    string
	order   []string
}

// NewCategoryCache opens the cache at path. A missing or corrupt file
// yields an empty cache, never an error.
func NewCategoryCache(path string) *CategoryCache {
	c := &CategoryCache{
		path:    path,
		entries: make(map[string]string),
	}
	c.load()
	return c
}

func (c *CategoryCache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read category cache, starting empty", "path", c.path, "error", err)
		}
		return
	}

	entries, order, err := decodeOrderedStrings(data)
	if err != nil {
		slog.Warn("Failed to parse category cache, starting empty", "path", c.path, "error", err)
		return
	}

	c.entries = entries
	c.order = order
}

// decodeOrderedStrings parses a flat JSON string map preserving key order.
func decodeOrderedStrings(data []byte) (map[string]string, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	entries := make(map[string]string)
	var order []string

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected string key, got %v", keyTok)
		}

		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}

		if _, seen := entries[key]; !seen {
			order = append(order, key)
		}
		entries[key] = value
	}

	return entries, order, nil
}

// Save overwrites the persisted cache atomically, keeping insertion order.
func (c *CategoryCache) Save() error {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, key := range c.order {
		kb, err := jsonValue(key)
		if err != nil {
			return fmt.Errorf("encoding cache key %q: %w", key, err)
		}
		vb, err := jsonValue(c.entries[key])
		if err != nil {
			return fmt.Errorf("encoding cache value for %q: %w", key, err)
		}
		buf.WriteString("  ")
		buf.Write(kb)
		buf.WriteString(": ")
		buf.Write(vb)
		if i < len(c.order)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	return writeFileAtomic(c.path, buf.Bytes())
}

// Lookup returns the category memorized for the exact raw description.
func (c *CategoryCache) Lookup(raw string) (string, bool) {
	category, ok := c.entries[raw]
	return category, ok
}

// FuzzyLookup scans every cached key for the single entry most similar to
// raw, using a 0-100 normalized edit-distance ratio. It returns the
// highest-scoring entry at or above threshold; the first key reaching the
// maximum score in insertion order wins ties. O(n) over the cache, which
// is fine at a few thousand merchants.
func (c *CategoryCache) FuzzyLookup(raw string, threshold int) (FuzzyMatch, bool) {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}

	rawRunes := []rune(raw)
	best := FuzzyMatch{}
	found := false

	for _, key := range c.order {
		ratio := levenshtein.RatioForStrings(rawRunes, []rune(key), levenshtein.DefaultOptions)
		score := int(math.Round(ratio * 100))
		if score >= threshold && score > best.Score {
			best = FuzzyMatch{Key: key, Category: c.entries[key], Score: score}
			found = true
		}
	}

	return best, found
}

// Set memorizes a decision. Last write wins; new keys append to the
// iteration order.
func (c *CategoryCache) Set(raw, category string) {
	if _, ok := c.entries[raw]; !ok {
		c.order = append(c.order, raw)
	}
	c.entries[raw] = category
}

// Len returns the number of cached entries.
func (c *CategoryCache) Len() int {
	return len(c.entries)
}

// Keys returns the cached keys in insertion order.
func (c *CategoryCache) Keys() []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}
