package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/reginold/asset-management/internal/common"
	"github.com/reginold/asset-management/internal/config"
	"github.com/reginold/asset-management/internal/engine"
	"github.com/reginold/asset-management/internal/llm"
	"github.com/reginold/asset-management/internal/storage"
)

// Default store file names under the data directory.
const (
	rulesFile   = "category_rules.json"
	cacheFile   = "merchant_categories.json"
	unknownFile = "unknown_merchants.json"
	sessionFile = "review_session.json"
	historyFile = "history.db"
)

func dataDir() string {
	return viper.GetString("data_dir")
}

func openRuleStore() *storage.RuleStore {
	return storage.NewRuleStore(config.StorePath(viper.GetString("stores.rules"), dataDir(), rulesFile))
}

func openCategoryCache() *storage.CategoryCache {
	return storage.NewCategoryCache(config.StorePath(viper.GetString("stores.cache"), dataDir(), cacheFile))
}

func openUnknownStore() *storage.UnknownStore {
	return storage.NewUnknownStore(config.StorePath(viper.GetString("stores.unknown"), dataDir(), unknownFile))
}

func openSessionStore() *storage.SessionStore {
	return storage.NewSessionStore(config.StorePath(viper.GetString("stores.session"), dataDir(), sessionFile))
}

func openHistoryStore() (*storage.HistoryStore, error) {
	return storage.NewHistoryStore(config.StorePath(viper.GetString("stores.history"), dataDir(), historyFile))
}

// buildClassifier assembles the remote classifier from configuration.
// Without an API key it returns ErrClassifierUnavailable and the engine
// runs rules-only.
func buildClassifier() (engine.Classifier, error) {
	apiKey := viper.GetString("llm.api_key")
	if apiKey == "" {
		return nil, common.ErrClassifierUnavailable
	}

	client, err := llm.NewClient(llm.Config{
		Provider:          viper.GetString("llm.provider"),
		APIKey:            apiKey,
		BaseURL:           viper.GetString("llm.base_url"),
		Model:             viper.GetString("llm.model"),
		Temperature:       viper.GetFloat64("llm.temperature"),
		Timeout:           viper.GetDuration("llm.timeout"),
		MaxTokens:         viper.GetInt("llm.max_tokens"),
		RequestsPerMinute: viper.GetInt("llm.requests_per_minute"),
	})
	if err != nil {
		return nil, err
	}

	classifier := llm.NewVocabClassifier(client, nil)
	if searchKey := viper.GetString("search.api_key"); searchKey != "" {
		search := llm.NewTavilySearch(searchKey, viper.GetDuration("search.timeout"))
		return llm.NewSearchAugmentedClassifier(classifier, search), nil
	}
	return classifier, nil
}

// buildEngine wires the categorization engine from configuration.
func buildEngine(rules *storage.RuleStore, cache *storage.CategoryCache) *engine.Engine {
	opts := []engine.Option{}
	classifier, err := buildClassifier()
	switch {
	case err == nil:
		opts = append(opts, engine.WithClassifier(classifier))
	case errors.Is(err, common.ErrClassifierUnavailable):
		slog.Debug("No classifier API key configured, running rules-only")
	default:
		slog.Warn("Failed to build classifier, running rules-only", "error", err)
	}
	if threshold := viper.GetInt("review.fuzzy_threshold"); threshold > 0 {
		opts = append(opts, engine.WithFuzzyThreshold(threshold))
	}
	return engine.New(rules, cache, opts...)
}

// statsSource opens the optional history store for the review workflow.
func statsSource() (*storage.HistoryStore, bool) {
	history, err := openHistoryStore()
	if err != nil {
		slog.Warn("Transaction history unavailable", "error", err)
		return nil, false
	}
	return history, true
}
