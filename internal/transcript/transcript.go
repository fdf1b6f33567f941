// Package transcript loads word-level transcription output produced by
// WhisperX-style aligners into the word timeline the scene aligner
// consumes.
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"storyreel/internal/align"
)

// document covers the two shapes WhisperX emits: a flat word_segments
// list when alignment ran, and per-segment word lists otherwise.
type document struct {
	WordSegments []word `json:"word_segments"`
	Segments     []struct {
		Words []word `json:"words"`
	} `json:"segments"`
}

type word struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Score float64  `json:"score"`
}

// Load reads a transcription JSON file and returns its word timeline.
func Load(path string) ([]align.WordTimestamp, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	words, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	return words, nil
}

// Parse decodes transcription JSON. Words without timestamps (numbers
// and abbreviations the aligner could not place) inherit the previous
// word's end time so the timeline stays monotonic.
func Parse(data []byte) ([]align.WordTimestamp, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	raw := doc.WordSegments
	if len(raw) == 0 {
		for _, seg := range doc.Segments {
			raw = append(raw, seg.Words...)
		}
	}
	if len(raw) == 0 {
		return nil, errors.New("no word timestamps found")
	}

	words := make([]align.WordTimestamp, 0, len(raw))
	lastEnd := 0.0
	for _, w := range raw {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		wt := align.WordTimestamp{Word: text, Probability: w.Score}
		if w.Start != nil {
			wt.Start = *w.Start
		} else {
			wt.Start = lastEnd
		}
		if w.End != nil {
			wt.End = *w.End
		} else {
			wt.End = wt.Start
		}
		if wt.End < wt.Start {
			wt.End = wt.Start
		}
		lastEnd = wt.End
		words = append(words, wt)
	}
	if len(words) == 0 {
		return nil, errors.New("no word timestamps found")
	}
	return words, nil
}
