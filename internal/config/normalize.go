package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeSearch()
	c.normalizeMatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSecs
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		envKeys := []string{"STORYREEL_LLM_API_KEY"}
		if c.LLM.Provider == "openai" {
			envKeys = append(envKeys, "OPENAI_API_KEY")
		} else {
			envKeys = append(envKeys, "OPENROUTER_API_KEY")
		}
		for _, key := range envKeys {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.LLM.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
}

func (c *Config) normalizeSearch() {
	c.Search.BaseURL = strings.TrimSpace(c.Search.BaseURL)
	c.Search.APIKey = strings.TrimSpace(c.Search.APIKey)
	if c.Search.APIKey == "" {
		if value, ok := os.LookupEnv("STORYREEL_SEARCH_API_KEY"); ok {
			c.Search.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Search.TimeoutSeconds <= 0 {
		c.Search.TimeoutSeconds = 30
	}
}

func (c *Config) normalizeMatch() {
	c.Match.Granularity = strings.ToLower(strings.TrimSpace(c.Match.Granularity))
	if c.Match.Granularity == "" {
		c.Match.Granularity = defaultGranularity
	}
	if c.Match.SearchLimit <= 0 {
		c.Match.SearchLimit = defaultSearchLimit
	}
	if c.Match.Workers <= 0 {
		c.Match.Workers = defaultWorkers
	}
	if c.Match.RetryMaxAttempts <= 0 {
		c.Match.RetryMaxAttempts = defaultRetryMaxAttempts
	}
	if c.Match.RetryBaseDelayMS <= 0 {
		c.Match.RetryBaseDelayMS = defaultRetryBaseDelayMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
