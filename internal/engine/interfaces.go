// Package engine orchestrates merchant categorization across the cache,
// the rule store, and an optional remote classifier.
package engine

import (
	"context"

	"github.com/reginold/asset-management/internal/model"
)

// Classifier is a remote categorization backend. Implementations never
// return an error; failures are reported as a result with the
// MethodLLMError method and zero confidence so a flaky backend cannot
// abort a batch.
type Classifier interface {
	Classify(ctx context.Context, merchant string) model.MatchResult
}
