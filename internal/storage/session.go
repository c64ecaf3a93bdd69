package storage

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/reginold/asset-management/internal/model"
)

// SessionStore checkpoints review sessions to a JSON file so an
// interrupted review can resume without losing the audit trail.
type SessionStore struct {
	path string
}

// NewSessionStore returns a store checkpointing to path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load returns the checkpointed session, or a fresh one if no checkpoint
// exists or it cannot be parsed.
func (s *SessionStore) Load() *model.ReviewSession {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read session checkpoint, starting fresh", "path", s.path, "error", err)
		}
		return model.NewReviewSession()
	}

	var session model.ReviewSession
	if err := json.Unmarshal(data, &session); err != nil {
		slog.Warn("Failed to parse session checkpoint, starting fresh", "path", s.path, "error", err)
		return model.NewReviewSession()
	}
	if session.DecisionsMade == nil {
		session.DecisionsMade = []model.Decision{}
	}
	if session.PatternsLearned == nil {
		session.PatternsLearned = []model.LearnedPattern{}
	}
	return &session
}

// Save checkpoints the session atomically.
func (s *SessionStore) Save(session *model.ReviewSession) error {
	return writeJSONAtomic(s.path, session)
}

// Reset deletes the checkpoint. A missing checkpoint is not an error.
func (s *SessionStore) Reset() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
