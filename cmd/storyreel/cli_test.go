package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/script"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, "", "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(env.baseDir, "fresh-config.toml")
	out, _, err = runCLI(t, env.configPath, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("STORYREEL_LLM_API_KEY", "sk-super-secret")

	out, _, err := runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "sk-super-secret") {
		t.Fatalf("api key leaked into config show output")
	}
	requireContains(t, out, "[match]")
}

func TestLibraryImportStatsAndSearch(t *testing.T) {
	env := setupCLITestEnv(t)
	segmentsPath := writeJSONFile(t, env.baseDir, "segments.json", marketSegmentsFixture())

	out, _, err := runCLI(t, env.configPath, "library", "import",
		"--project", "venezuela", "--file", segmentsPath)
	if err != nil {
		t.Fatalf("library import: %v", err)
	}
	requireContains(t, out, "Imported 3 segment(s)")

	out, _, err = runCLI(t, env.configPath, "library", "stats", "--project", "venezuela")
	if err != nil {
		t.Fatalf("library stats: %v", err)
	}
	requireContains(t, out, "venezuela")
	requireContains(t, out, "3")

	out, _, err = runCLI(t, env.configPath, "library", "search",
		"--project", "venezuela", "street market produce")
	if err != nil {
		t.Fatalf("library search: %v", err)
	}
	requireContains(t, out, "/footage/market.mp4")
}

func TestClusterCommandStoresClusters(t *testing.T) {
	env := setupCLITestEnv(t)
	segmentsPath := writeJSONFile(t, env.baseDir, "segments.json", marketSegmentsFixture())

	if _, _, err := runCLI(t, env.configPath, "library", "import",
		"--project", "venezuela", "--file", segmentsPath); err != nil {
		t.Fatalf("library import: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "cluster", "--project", "venezuela")
	if err != nil {
		t.Fatalf("cluster: %v", err)
	}
	// The two market segments are adjacent and share a vendor; the oil
	// field stands alone.
	requireContains(t, out, "Stored 2 cluster(s)")

	out, _, err = runCLI(t, env.configPath, "library", "clusters", "--project", "venezuela")
	if err != nil {
		t.Fatalf("library clusters: %v", err)
	}
	requireContains(t, out, "/footage/market.mp4")
	requireContains(t, out, "/footage/oilfield.mp4")
}

func TestAlignCommandWritesOutcome(t *testing.T) {
	env := setupCLITestEnv(t)

	scriptPath := writeJSONFile(t, env.baseDir, "script.json", script.Script{
		Scenes: []script.Scene{
			{ID: "s1", NarrationExcerpt: "Venezuela was once the richest country"},
			{ID: "s2", NarrationExcerpt: "then everything changed"},
		},
	})
	transcriptPath := writeJSONFile(t, env.baseDir, "transcript.json", map[string]any{
		"word_segments": wordFixture(
			"Venezuela", "was", "once", "the", "richest", "country",
			"then", "everything", "changed"),
	})
	outputPath := filepath.Join(env.baseDir, "alignment.json")

	out, _, err := runCLI(t, env.configPath, "align",
		"--script", scriptPath,
		"--transcript", transcriptPath,
		"--output", outputPath,
		"--apply")
	if err != nil {
		t.Fatalf("align: %v", err)
	}
	requireContains(t, out, "s1")
	requireContains(t, out, "Wrote alignment to")

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read alignment output: %v", err)
	}
	var decoded struct {
		Results []struct {
			SceneID    string  `json:"scene_id"`
			Confidence float64 `json:"confidence"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("alignment output is not JSON: %v", err)
	}
	if len(decoded.Results) != 2 || decoded.Results[0].Confidence != 1.0 {
		t.Fatalf("unexpected alignment results: %+v", decoded.Results)
	}

	updated, err := script.Load(scriptPath)
	if err != nil {
		t.Fatalf("reload script: %v", err)
	}
	if updated.Scenes[1].StartSeconds <= 0 {
		t.Fatalf("apply should write timings back: %+v", updated.Scenes[1])
	}
}

func TestMatchCommandMatchesScenes(t *testing.T) {
	env := setupCLITestEnv(t)
	segmentsPath := writeJSONFile(t, env.baseDir, "segments.json", marketSegmentsFixture())

	if _, _, err := runCLI(t, env.configPath, "library", "import",
		"--project", "venezuela", "--file", segmentsPath); err != nil {
		t.Fatalf("library import: %v", err)
	}

	scriptPath := writeJSONFile(t, env.baseDir, "script.json", script.Script{
		Scenes: []script.Scene{
			{
				ID:               "s1",
				NarrationExcerpt: "prices doubled at the street market",
				SearchQuery:      "crowded street market produce stalls",
				Duration:         6,
			},
		},
	})
	outputPath := filepath.Join(env.baseDir, "matched.json")

	out, _, err := runCLI(t, env.configPath, "match",
		"--script", scriptPath,
		"--project", "venezuela",
		"--output", outputPath)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	requireContains(t, out, "1 matched")

	matched, err := script.Load(outputPath)
	if err != nil {
		t.Fatalf("load matched script: %v", err)
	}
	m := matched.Scenes[0].LibraryMatch
	if m == nil {
		t.Fatalf("scene should carry a match: %+v", matched.Scenes[0])
	}
	if m.VideoPath != "/footage/market.mp4" {
		t.Fatalf("unexpected clip: %+v", m)
	}
	if m.EndSeconds <= m.StartSeconds {
		t.Fatalf("tailored window is empty: %+v", m)
	}
}

func wordFixture(words ...string) []map[string]any {
	out := make([]map[string]any, len(words))
	for i, w := range words {
		start := float64(i) * 0.5
		out[i] = map[string]any{
			"word":  w,
			"start": start,
			"end":   start + 0.5,
			"score": 0.99,
		}
	}
	return out
}
