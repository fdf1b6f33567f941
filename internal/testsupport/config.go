// Package testsupport provides builders for test fixtures shared across
// packages.
package testsupport

import (
	"path/filepath"
	"testing"

	"storyreel/internal/config"
)

// ConfigOption allows callers to customize the generated test
// configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.LLM.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithLLMKey sets the LLM API key on the test config.
func WithLLMKey(key string) ConfigOption {
	return func(c *config.Config) {
		c.LLM.APIKey = key
	}
}

// WithRemoteSearch enables the remote search service on the test
// config.
func WithRemoteSearch(baseURL string) ConfigOption {
	return func(c *config.Config) {
		c.Search.Enabled = true
		c.Search.BaseURL = baseURL
	}
}
