package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"storyreel/internal/config"
	"storyreel/internal/library"
	"storyreel/internal/logging"
	"storyreel/internal/match"
	"storyreel/internal/services/openaichat"
	"storyreel/internal/services/openrouter"
	"storyreel/internal/services/search"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

func (c *commandContext) openStore() (*library.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return library.Open(cfg.LibraryDBPath())
}

// newGenerator builds the configured LLM provider. A missing API key
// returns nil so callers degrade to deterministic behavior.
func (c *commandContext) newGenerator(logger *slog.Logger) (match.TextGenerator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.LLM.APIKey == "" {
		logger.Warn("no LLM api key configured; arbitration and refinement disabled")
		return nil, nil
	}
	switch cfg.LLM.Provider {
	case "openai":
		client, err := openaichat.NewClient(openaichat.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("build openai client: %w", err)
		}
		return client, nil
	default:
		return openrouter.NewClient(openrouter.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}), nil
	}
}

// newSearcher prefers the remote search service when configured and
// falls back to keyword search over the local library store.
func (c *commandContext) newSearcher(store *library.Store) (match.Searcher, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Search.Enabled {
		client, err := search.NewClient(search.Config{
			BaseURL:        cfg.Search.BaseURL,
			APIKey:         cfg.Search.APIKey,
			TimeoutSeconds: cfg.Search.TimeoutSeconds,
		})
		if err != nil {
			return nil, fmt.Errorf("build search client: %w", err)
		}
		return client, nil
	}
	return store, nil
}

func (c *commandContext) matchPolicy(project string) (match.Policy, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return match.Policy{}, err
	}
	return match.Policy{
		MinSimilarity:         cfg.Match.MinSimilarity,
		FastPathMinSimilarity: cfg.Match.FastPathMinSimilarity,
		FastPathMargin:        cfg.Match.FastPathMargin,
		SkipEdgePercent:       cfg.Match.SkipEdgePercent,
		SearchLimit:           cfg.Match.SearchLimit,
		Granularity:           match.Granularity(cfg.Match.Granularity),
		Project:               project,
		RetryMaxAttempts:      cfg.Match.RetryMaxAttempts,
		RetryBaseDelay:        time.Duration(cfg.Match.RetryBaseDelayMS) * time.Millisecond,
		Workers:               cfg.Match.Workers,
	}, nil
}
