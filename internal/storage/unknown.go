package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/reginold/asset-management/internal/model"
)

// UnknownStore is the review ledger. Merchants land here when automatic
// categorization could not decide, and leave (logically) when a human
// records a verdict. Entries keep insertion order so the review queue is
// stable across runs.
type UnknownStore struct {
	entries map[string]model.UnknownMerchant
	path    string
	order   []string
}

// NewUnknownStore opens the review ledger at path. A missing or corrupt
// file yields an empty ledger, never an error.
func NewUnknownStore(path string) *UnknownStore {
	s := &UnknownStore{
		path:    path,
		entries: make(map[string]model.UnknownMerchant),
	}
	s.load()
	return s
}

func (s *UnknownStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read review ledger, starting empty", "path", s.path, "error", err)
		}
		return
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		slog.Warn("Failed to parse review ledger, starting empty", "path", s.path, "error", err)
		return
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		slog.Warn("Review ledger is not a JSON object, starting empty", "path", s.path)
		return
	}

	entries := make(map[string]model.UnknownMerchant)
	var order []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			slog.Warn("Failed to parse review ledger, starting empty", "path", s.path, "error", err)
			return
		}
		key, ok := keyTok.(string)
		if !ok {
			slog.Warn("Review ledger has a non-string key, starting empty", "path", s.path)
			return
		}

		var entry model.UnknownMerchant
		if err := dec.Decode(&entry); err != nil {
			slog.Warn("Failed to parse review ledger entry, starting empty", "path", s.path, "merchant", key, "error", err)
			return
		}

		if _, seen := entries[key]; !seen {
			order = append(order, key)
		}
		entries[key] = entry
	}

	s.entries = entries
	s.order = order
}

// Save overwrites the persisted ledger atomically, keeping insertion order.
func (s *UnknownStore) Save() error {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, key := range s.order {
		kb, err := jsonValue(key)
		if err != nil {
			return fmt.Errorf("encoding ledger key %q: %w", key, err)
		}
		vb, err := jsonValue(s.entries[key])
		if err != nil {
			return fmt.Errorf("encoding ledger entry for %q: %w", key, err)
		}
		buf.WriteString("  ")
		buf.Write(kb)
		buf.WriteString(": ")
		buf.Write(vb)
		if i < len(s.order)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	return writeFileAtomic(s.path, buf.Bytes())
}

// Add queues a merchant for review. It is a no-op if the merchant already
// has an entry, reviewed or not, so repeated categorization runs never
// reset a prior verdict.
func (s *UnknownStore) Add(merchant string) {
	if _, ok := s.entries[merchant]; ok {
		return
	}
	s.entries[merchant] = model.UnknownMerchant{
		DateAdded:         time.Now(),
		SuggestedCategory: model.CategoryUnknown,
	}
	s.order = append(s.order, merchant)
}

// RecordReview records a human verdict for the merchant, upserting the
// entry if it was never queued.
func (s *UnknownStore) RecordReview(merchant, category, source string) {
	entry, ok := s.entries[merchant]
	if !ok {
		entry = model.UnknownMerchant{DateAdded: time.Now()}
		s.order = append(s.order, merchant)
	}
	now := time.Now()
	entry.SuggestedCategory = category
	entry.HumanReviewed = true
	entry.DateReviewed = &now
	entry.ReviewSource = source
	s.entries[merchant] = entry
}

// Unreviewed returns the merchants still awaiting a verdict, in the order
// they were queued, with the Merchant field populated.
func (s *UnknownStore) Unreviewed() []model.UnknownMerchant {
	var pending []model.UnknownMerchant
	for _, key := range s.order {
		entry := s.entries[key]
		if entry.HumanReviewed {
			continue
		}
		entry.Merchant = key
		pending = append(pending, entry)
	}
	return pending
}

// ReviewedCategories returns merchant → category for every entry with a
// recorded human verdict.
func (s *UnknownStore) ReviewedCategories() map[string]string {
	reviewed := make(map[string]string)
	for key, entry := range s.entries {
		if entry.HumanReviewed {
			reviewed[key] = entry.SuggestedCategory
		}
	}
	return reviewed
}

// Len returns the total number of ledger entries.
func (s *UnknownStore) Len() int {
	return len(s.entries)
}

// PendingCount returns the number of entries still awaiting review.
func (s *UnknownStore) PendingCount() int {
	count := 0
	for _, entry := range s.entries {
		if !entry.HumanReviewed {
			count++
		}
	}
	return count
}
