package transcript

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseWordSegments(t *testing.T) {
	data := []byte(`{
		"word_segments": [
			{"word": " Venezuela ", "start": 0.0, "end": 0.6, "score": 0.98},
			{"word": "was", "start": 0.6, "end": 0.8, "score": 0.99},
			{"word": "collapsing", "start": 0.9, "end": 1.5, "score": 0.97}
		]
	}`)
	words, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("got %d words, want 3", len(words))
	}
	if words[0].Word != "Venezuela" {
		t.Fatalf("word text should be trimmed, got %q", words[0].Word)
	}
	if words[2].Start != 0.9 || words[2].End != 1.5 {
		t.Fatalf("timestamps lost: %+v", words[2])
	}
}

func TestParseFallsBackToSegmentWords(t *testing.T) {
	data := []byte(`{
		"segments": [
			{"words": [{"word": "the", "start": 0.0, "end": 0.2, "score": 0.9}]},
			{"words": [{"word": "economy", "start": 0.2, "end": 0.7, "score": 0.9}]}
		]
	}`)
	words, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(words) != 2 || words[1].Word != "economy" {
		t.Fatalf("segment words should flatten in order: %+v", words)
	}
}

func TestParseUnalignedWordsInheritPreviousEnd(t *testing.T) {
	data := []byte(`{
		"word_segments": [
			{"word": "in", "start": 1.0, "end": 1.2, "score": 0.9},
			{"word": "2016", "score": 0.0},
			{"word": "inflation", "start": 2.0, "end": 2.6, "score": 0.9}
		]
	}`)
	words, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("unaligned words must be kept, got %d", len(words))
	}
	if words[1].Start != 1.2 || words[1].End != 1.2 {
		t.Fatalf("unaligned word should pin to previous end, got %+v", words[1])
	}
}

func TestParseRejectsEmptyTimeline(t *testing.T) {
	for _, data := range []string{`{}`, `{"word_segments": []}`, `{"word_segments": [{"word": "  "}]}`} {
		if _, err := Parse([]byte(data)); err == nil {
			t.Fatalf("expected error for %s", data)
		}
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.json")
	payload := `{"word_segments": [{"word": "hello", "start": 0.0, "end": 0.4, "score": 1.0}]}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	words, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(words) != 1 || words[0].Word != "hello" {
		t.Fatalf("unexpected words: %+v", words)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("missing file must error")
	}
}
