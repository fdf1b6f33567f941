package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"storyreel/internal/cluster"
	"storyreel/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	dataDir    string
}

// setupCLITestEnv isolates HOME, neutralizes API-key env fallbacks so
// tests never build a live LLM client, and writes a minimal config file
// pointing at temp directories.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("STORYREEL_LLM_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := testsupport.NewConfig(t, testsupport.WithLLMKey(""))
	configPath := filepath.Join(base, "config.toml")
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{baseDir: base, configPath: configPath, dataDir: cfg.Paths.DataDir}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeJSONFile(t *testing.T, dir, name string, payload any) string {
	t.Helper()
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func marketSegmentsFixture() []cluster.VideoSegment {
	return []cluster.VideoSegment{
		{
			VideoPath:        "/footage/market.mp4",
			TimestampStart:   0,
			TimestampEnd:     14,
			FrameDescription: "crowded street market with produce stalls",
			Transcript:       "prices doubled again this week",
			Context: &cluster.InferredContext{
				People:   []string{"street vendor"},
				Location: "Caracas market",
			},
		},
		{
			VideoPath:        "/footage/market.mp4",
			TimestampStart:   14,
			TimestampEnd:     27,
			FrameDescription: "vendor weighing vegetables for a customer",
			Transcript:       "nobody can afford the basics",
			Context: &cluster.InferredContext{
				People:   []string{"street vendor"},
				Location: "Caracas market",
			},
		},
		{
			VideoPath:        "/footage/oilfield.mp4",
			TimestampStart:   5,
			TimestampEnd:     30,
			FrameDescription: "oil pumpjacks at sunset on an empty plain",
			Context: &cluster.InferredContext{
				Location: "Maracaibo basin",
			},
		},
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
