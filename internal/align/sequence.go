package align

import (
	"strings"

	"storyreel/internal/script"
	"storyreel/internal/textnorm"
)

// ReviewConfidence is the confidence floor below which a resolved scene
// is additionally surfaced for human review.
const ReviewConfidence = 0.8

// Result maps one scene onto a time range in the narration audio.
type Result struct {
	SceneID          string  `json:"scene_id"`
	StartSeconds     float64 `json:"start_seconds"`
	EndSeconds       float64 `json:"end_seconds"`
	Confidence       float64 `json:"confidence"`
	MatchedText      string  `json:"matched_text,omitempty"`
	NarrationExcerpt string  `json:"narration_excerpt"`
}

// Outcome bundles the full alignment with the subset flagged for review.
type Outcome struct {
	Results []Result `json:"results"`
	Review  []Result `json:"review,omitempty"`
}

// AlignScenesToAudio walks scenes in script order, searching the word
// stream with a monotonically advancing floor so no later scene can
// match earlier audio. A scene that fails to match is pinned to the
// previous scene's end with a zero-duration placeholder; placeholder
// ends are back-filled once a later scene resolves. Scenes with empty
// narration never produce a result, and the final scene's end is
// clamped to at least the transcript tail.
//
// A run of consecutive unresolved scenes before the next resolved one
// all back-fill to the same instant and therefore carry near-zero
// durations. That is intentional, if sharp-edged: the placeholder has no
// better information to offer, and every zero-confidence result lands on
// the review list anyway.
//
// fuzzyThreshold tunes the fuzzy-tier acceptance floor; values outside
// (0, 1] fall back to DefaultFuzzyThreshold.
func AlignScenesToAudio(scenes []script.Scene, words []WordTimestamp, fuzzyThreshold float64) Outcome {
	var out Outcome
	var pending []int
	floor := 0

	for _, scene := range scenes {
		if len(textnorm.Tokens(scene.NarrationExcerpt)) == 0 {
			continue
		}
		span, ok := FindTextInWords(scene.NarrationExcerpt, words, floor, fuzzyThreshold)
		if ok {
			start := words[span.StartIndex].Start
			for _, idx := range pending {
				out.Results[idx].EndSeconds = start
			}
			pending = pending[:0]
			out.Results = append(out.Results, Result{
				SceneID:          scene.ID,
				StartSeconds:     start,
				EndSeconds:       words[span.EndIndex].End,
				Confidence:       span.Confidence,
				MatchedText:      joinWords(words, span),
				NarrationExcerpt: scene.NarrationExcerpt,
			})
			floor = span.EndIndex + 1
			continue
		}

		prevEnd := 0.0
		if n := len(out.Results); n > 0 {
			prevEnd = out.Results[n-1].EndSeconds
		}
		out.Results = append(out.Results, Result{
			SceneID:          scene.ID,
			StartSeconds:     prevEnd,
			EndSeconds:       prevEnd,
			Confidence:       0,
			NarrationExcerpt: scene.NarrationExcerpt,
		})
		pending = append(pending, len(out.Results)-1)
	}

	if n := len(out.Results); n > 0 && len(words) > 0 {
		if tail := words[len(words)-1].End; out.Results[n-1].EndSeconds < tail {
			out.Results[n-1].EndSeconds = tail
		}
	}

	for _, r := range out.Results {
		if r.Confidence < ReviewConfidence {
			out.Review = append(out.Review, r)
		}
	}
	return out
}

func joinWords(words []WordTimestamp, span Span) string {
	parts := make([]string, 0, span.EndIndex-span.StartIndex+1)
	for i := span.StartIndex; i <= span.EndIndex && i < len(words); i++ {
		if w := strings.TrimSpace(words[i].Word); w != "" {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, " ")
}
