package review

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reginold/asset-management/internal/engine"
	"github.com/reginold/asset-management/internal/model"
	"github.com/reginold/asset-management/internal/storage"
)

type verdict struct {
	category string
	ok       bool
}

// scriptedPrompter replays canned answers and records what it was shown.
type scriptedPrompter struct {
	actions      []GroupAction
	batchAnswers []string
	verdicts     []verdict
	groupsSeen   []string
	reviewed     []Candidate
	nothingCalls int
	summaryCalls int
}

func (p *scriptedPrompter) ConfirmGroup(group Group) (GroupAction, error) {
	p.groupsSeen = append(p.groupsSeen, group.Pattern)
	action := p.actions[0]
	p.actions = p.actions[1:]
	return action, nil
}

func (p *scriptedPrompter) PickCategory(Group) (string, error) {
	answer := p.batchAnswers[0]
	p.batchAnswers = p.batchAnswers[1:]
	return answer, nil
}

func (p *scriptedPrompter) ReviewMerchant(c Candidate) (string, bool, error) {
	p.reviewed = append(p.reviewed, c)
	v := p.verdicts[0]
	p.verdicts = p.verdicts[1:]
	return v.category, v.ok, nil
}

func (p *scriptedPrompter) NothingToReview() { p.nothingCalls++ }

func (p *scriptedPrompter) ShowSummary(*model.ReviewSession) { p.summaryCalls++ }

type fakeStats map[string]model.MerchantStats

func (f fakeStats) MerchantStats(context.Context) (map[string]model.MerchantStats, error) {
	return f, nil
}

type workflowFixture struct {
	unknown  *storage.UnknownStore
	cache    *storage.CategoryCache
	rules    *storage.RuleStore
	sessions *storage.SessionStore
}

func newWorkflowFixture(t *testing.T, merchants ...string) *workflowFixture {
	t.Helper()
	dir := t.TempDir()
	f := &workflowFixture{
		unknown:  storage.NewUnknownStore(filepath.Join(dir, "unknown.json")),
		cache:    storage.NewCategoryCache(filepath.Join(dir, "cache.json")),
		rules:    storage.NewRuleStore(filepath.Join(dir, "rules.json")),
		sessions: storage.NewSessionStore(filepath.Join(dir, "session.json")),
	}
	for _, m := range merchants {
		f.unknown.Add(m)
	}
	return f
}

func (f *workflowFixture) workflow(prompter Prompter, stats MerchantStatsSource) *Workflow {
	eng := engine.New(f.rules, f.cache)
	return NewWorkflow(f.unknown, f.cache, f.sessions, eng, stats, prompter)
}

func TestWorkflowBatchDecision(t *testing.T) {
	f := newWorkflowFixture(t, "AMAZON CO JP", "AMAZON MKTP", "東京ガス")
	stats := fakeStats{
		"AMAZON CO JP": {TotalAmount: 1200, Count: 2},
		"AMAZON MKTP":  {TotalAmount: 500, Count: 1},
		"東京ガス":         {TotalAmount: 300, Count: 1},
	}
	prompter := &scriptedPrompter{
		actions:      []GroupAction{ActionBatch, ActionSkip},
		batchAnswers: []string{"Shopping"},
	}

	require.NoError(t, f.workflow(prompter, stats).Run(context.Background()))

	// amazon bucket outweighs 東京ガス and is shown first
	assert.Equal(t, []string{"amazon", "東京ガス"}, prompter.groupsSeen)
	assert.Equal(t, 1, prompter.summaryCalls)

	assert.Equal(t, 1, f.unknown.PendingCount())
	reviewed := f.unknown.ReviewedCategories()
	assert.Equal(t, "Shopping", reviewed["AMAZON CO JP"])
	assert.Equal(t, "Shopping", reviewed["AMAZON MKTP"])

	// Raw names land in the cache
	for _, merchant := range []string{"AMAZON CO JP", "AMAZON MKTP"} {
		category, ok := f.cache.Lookup(merchant)
		require.True(t, ok, merchant)
		assert.Equal(t, "Shopping", category)
	}

	stats2 := f.rules.Stats()
	assert.Greater(t, stats2.BySource[string(model.SourceBatchHuman)], 0)

	session := f.sessions.Load()
	assert.Equal(t, 2, session.MerchantsReviewed)
	require.Len(t, session.PatternsLearned, 1)
	assert.Equal(t, "amazon", session.PatternsLearned[0].Pattern)
	assert.Equal(t, 2, session.PatternsLearned[0].MerchantCount)
}

func TestWorkflowIndividualDecisionsAndSkips(t *testing.T) {
	f := newWorkflowFixture(t, "東京ガス", "mystery merchant")
	prompter := &scriptedPrompter{
		actions: []GroupAction{ActionIndividual, ActionIndividual},
		verdicts: []verdict{
			{category: "Utilities", ok: true},
			{ok: false},
		},
	}

	require.NoError(t, f.workflow(prompter, nil).Run(context.Background()))

	assert.Equal(t, 1, f.unknown.PendingCount())
	category, ok := f.cache.Lookup("東京ガス")
	require.True(t, ok)
	assert.Equal(t, "Utilities", category)

	// A skipped merchant leaves no trace
	_, ok = f.cache.Lookup("mystery merchant")
	assert.False(t, ok)

	session := f.sessions.Load()
	assert.Equal(t, 1, session.MerchantsReviewed)
	require.Len(t, session.DecisionsMade, 1)
	assert.Equal(t, string(model.SourceIndividualHuman), session.DecisionsMade[0].Source)
}

func TestWorkflowAnnotatesCandidatesWithBestGuess(t *testing.T) {
	f := newWorkflowFixture(t, "NETFLIX TOKYO", "mystery merchant")
	prompter := &scriptedPrompter{
		actions: []GroupAction{ActionIndividual, ActionIndividual},
		verdicts: []verdict{
			{ok: false},
			{ok: false},
		},
	}

	require.NoError(t, f.workflow(prompter, nil).Run(context.Background()))

	require.Len(t, prompter.reviewed, 2)
	guesses := map[string]model.MatchResult{}
	for _, c := range prompter.reviewed {
		guesses[c.Merchant] = c.Guess
	}

	guess := guesses["NETFLIX TOKYO"]
	assert.Equal(t, "Entertainment", guess.Category)
	assert.InDelta(t, 0.95, guess.Confidence, 1e-9)
	assert.Equal(t, "rule_contains", guess.Method)

	// Nothing matches the mystery merchant, so its annotation is the
	// no-match result.
	assert.Equal(t, model.CategoryUnknown, guesses["mystery merchant"].Category)
	assert.Zero(t, guesses["mystery merchant"].Confidence)
}

func TestWorkflowNothingToReview(t *testing.T) {
	f := newWorkflowFixture(t)
	prompter := &scriptedPrompter{}

	require.NoError(t, f.workflow(prompter, nil).Run(context.Background()))

	assert.Equal(t, 1, prompter.nothingCalls)
	assert.Zero(t, prompter.summaryCalls)
}

func TestWorkflowStopsOnCancellation(t *testing.T) {
	f := newWorkflowFixture(t, "東京ガス")
	prompter := &scriptedPrompter{actions: []GroupAction{ActionSkip}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.workflow(prompter, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, prompter.groupsSeen, "no prompt after cancellation")
	assert.Equal(t, 1, f.unknown.PendingCount())
}
