package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateMatch(); err != nil {
		return err
	}
	if err := c.validateAlign(); err != nil {
		return err
	}
	if err := c.validateCluster(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case "openrouter", "openai":
	default:
		return fmt.Errorf("llm.provider must be \"openrouter\" or \"openai\", got %q", c.LLM.Provider)
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.Enabled && strings.TrimSpace(c.Search.BaseURL) == "" {
		return errors.New("search.base_url must be set when search.enabled is true")
	}
	return nil
}

func (c *Config) validateMatch() error {
	if c.Match.MinSimilarity < 0 || c.Match.MinSimilarity > 1 {
		return errors.New("match.min_similarity must be between 0 and 1")
	}
	if c.Match.FastPathMinSimilarity < 0 || c.Match.FastPathMinSimilarity > 1 {
		return errors.New("match.fast_path_min_similarity must be between 0 and 1")
	}
	if c.Match.FastPathMargin < 0 || c.Match.FastPathMargin > 1 {
		return errors.New("match.fast_path_margin must be between 0 and 1")
	}
	if c.Match.SkipEdgePercent < 0 || c.Match.SkipEdgePercent >= 0.5 {
		return errors.New("match.skip_edge_percent must be between 0 and 0.5")
	}
	switch c.Match.Granularity {
	case "segments", "clusters", "both":
	default:
		return fmt.Errorf("match.granularity must be \"segments\", \"clusters\" or \"both\", got %q", c.Match.Granularity)
	}
	return nil
}

func (c *Config) validateAlign() error {
	if c.Align.FuzzyThreshold < 0 || c.Align.FuzzyThreshold > 1 {
		return errors.New("align.fuzzy_threshold must be between 0 and 1")
	}
	if c.Align.ReviewConfidence < 0 || c.Align.ReviewConfidence > 1 {
		return errors.New("align.review_confidence must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateCluster() error {
	if c.Cluster.MaxGapSeconds < 0 {
		return errors.New("cluster.max_gap_seconds must be >= 0")
	}
	if c.Cluster.MinPeopleOverlap < 0 || c.Cluster.MinPeopleOverlap > 1 {
		return errors.New("cluster.min_people_overlap must be between 0 and 1")
	}
	return nil
}
