package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reginold/asset-management/internal/common"
	"github.com/reginold/asset-management/internal/model"
	"github.com/reginold/asset-management/internal/storage"
)

// GroupAction is the reviewer's choice for a merchant group.
type GroupAction int

const (
	// ActionSkip leaves every merchant in the group unreviewed.
	ActionSkip GroupAction = iota
	// ActionBatch applies one category to the whole group.
	ActionBatch
	// ActionIndividual reviews the group merchant by merchant.
	ActionIndividual
)

// Prompter is the interactive surface of a review session. Implementations
// own all presentation; the workflow only supplies data and records
// verdicts.
type Prompter interface {
	// ConfirmGroup presents a group and asks how to handle it.
	ConfirmGroup(group Group) (GroupAction, error)
	// PickCategory asks for one category to apply to a whole group.
	PickCategory(group Group) (string, error)
	// ReviewMerchant asks for a verdict on a single merchant. A skip is
	// reported as ok=false with no error.
	ReviewMerchant(candidate Candidate) (category string, ok bool, err error)
	// NothingToReview tells the reviewer the queue is empty.
	NothingToReview()
	// ShowSummary presents the finished session.
	ShowSummary(session *model.ReviewSession)
}

// MerchantStatsSource supplies spending aggregates for queue ordering.
type MerchantStatsSource interface {
	MerchantStats(ctx context.Context) (map[string]model.MerchantStats, error)
}

// Engine supplies best-guess categorizations for pending merchants and
// records confirmed verdicts as durable rules.
type Engine interface {
	Categorize(ctx context.Context, merchant string) model.MatchResult
	Learn(merchant, category string, source model.RuleSource) int
	SaveRules() error
}

// Workflow drives one review session over the unreviewed ledger.
// Verdicts persist immediately, before the next prompt, so an
// interrupted session loses nothing already decided. Skipped merchants
// stay queued for next time.
type Workflow struct {
	unknown  *storage.UnknownStore
	cache    *storage.CategoryCache
	sessions *storage.SessionStore
	engine   Engine
	history  MerchantStatsSource
	prompter Prompter
}

// NewWorkflow assembles a review workflow. history may be nil; the queue
// then keeps ledger order instead of spending order.
func NewWorkflow(unknown *storage.UnknownStore, cache *storage.CategoryCache, sessions *storage.SessionStore, eng Engine, history MerchantStatsSource, prompter Prompter) *Workflow {
	return &Workflow{
		unknown:  unknown,
		cache:    cache,
		sessions: sessions,
		engine:   eng,
		history:  history,
		prompter: prompter,
	}
}

// Run executes the session until the queue is exhausted, the reviewer
// quits, or the context is canceled. The session checkpoint is written
// on every exit path.
func (w *Workflow) Run(ctx context.Context) error {
	unreviewed := w.unknown.Unreviewed()
	if len(unreviewed) == 0 {
		w.prompter.NothingToReview()
		return nil
	}

	stats := map[string]model.MerchantStats{}
	if w.history != nil {
		var err error
		stats, err = w.history.MerchantStats(ctx)
		if err != nil {
			slog.Warn("Failed to load spending stats, reviewing in ledger order", "error", err)
			stats = map[string]model.MerchantStats{}
		}
	}

	queue := BuildQueue(unreviewed, stats)

	// Every candidate carries the engine's current opinion so the
	// reviewer sees a suggestion with each prompt.
	for i := range queue {
		if err := ctx.Err(); err != nil {
			return err
		}
		queue[i].Guess = w.engine.Categorize(ctx, queue[i].Merchant)
	}

	groups := GroupCandidates(queue)
	session := w.sessions.Load()

	runErr := w.reviewGroups(ctx, groups, session)

	w.prompter.ShowSummary(session)
	if err := w.sessions.Save(session); err != nil {
		if runErr != nil {
			common.LogError(err, "Failed to checkpoint session", common.Fields{
				"merchants_reviewed": session.MerchantsReviewed,
			})
			return runErr
		}
		return err
	}
	return runErr
}

func (w *Workflow) reviewGroups(ctx context.Context, groups []Group, session *model.ReviewSession) error {
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}

		action, err := w.prompter.ConfirmGroup(group)
		if err != nil {
			return err
		}

		switch action {
		case ActionSkip:
			continue

		case ActionBatch:
			category, err := w.prompter.PickCategory(group)
			if err != nil {
				return err
			}
			for _, c := range group.Candidates {
				if err := w.recordDecision(c.Merchant, category, model.SourceBatchHuman, session); err != nil {
					return err
				}
			}
			session.RecordPattern(group.Pattern, category, len(group.Candidates))

		case ActionIndividual:
			for _, c := range group.Candidates {
				if err := ctx.Err(); err != nil {
					return err
				}
				category, ok, err := w.prompter.ReviewMerchant(c)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				if err := w.recordDecision(c.Merchant, category, model.SourceIndividualHuman, session); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// recordDecision persists one verdict across every store before the
// next prompt can run.
func (w *Workflow) recordDecision(merchant, category string, source model.RuleSource, session *model.ReviewSession) error {
	w.unknown.RecordReview(merchant, category, string(source))
	w.cache.Set(merchant, category)
	w.engine.Learn(merchant, category, source)
	session.RecordDecision(merchant, category, source)
	session.MerchantsReviewed++

	if err := w.unknown.Save(); err != nil {
		return fmt.Errorf("saving review ledger: %w", err)
	}
	if err := w.cache.Save(); err != nil {
		return fmt.Errorf("saving category cache: %w", err)
	}
	if err := w.engine.SaveRules(); err != nil {
		return fmt.Errorf("saving rules: %w", err)
	}
	return nil
}
