package match

import (
	"fmt"
	"strings"

	"storyreel/internal/script"
)

const transcriptPreviewLimit = 100

// buildSelectionPrompt enumerates the ranked candidates for the LLM and
// asks for a JSON verdict. The instructions and the response contract
// live in one prompt because the generative collaborator exposes a
// single-prompt interface.
func buildSelectionPrompt(scene script.Scene, cands []Candidate) string {
	var b strings.Builder
	b.WriteString("You pick footage clips for a narrated documentary-style video.\n")
	fmt.Fprintf(&b, "Scene narration: %s\n", strings.TrimSpace(scene.NarrationExcerpt))
	if v := strings.TrimSpace(scene.VisualDescription); v != "" {
		fmt.Fprintf(&b, "Desired visuals: %s\n", v)
	}
	fmt.Fprintf(&b, "Target duration: %.1f seconds\n\n", scene.SceneDuration())
	b.WriteString("Candidates:\n")
	for i, c := range cands {
		fmt.Fprintf(&b, "[%d] %s %.1fs-%.1fs: %s\n", i, c.VideoPath, c.TimestampStart, c.TimestampEnd, strings.TrimSpace(c.Description))
		if preview := transcriptPreview(c.Transcript); preview != "" {
			fmt.Fprintf(&b, "    speech: %s\n", preview)
		}
		if len(c.People) > 0 {
			fmt.Fprintf(&b, "    people: %s\n", strings.Join(c.People, ", "))
		}
		if c.Location != "" {
			fmt.Fprintf(&b, "    location: %s\n", c.Location)
		}
		fmt.Fprintf(&b, "    similarity: %.3f\n", c.Similarity)
	}
	b.WriteString("\nChoose the candidate whose visuals best support the narration.\n")
	b.WriteString("Respond with JSON only: {\"selected_index\": <0-based index, or -1 if none is acceptable>, ")
	b.WriteString("\"reasoning\": \"<one sentence>\", \"confidence\": <0.0-1.0>}")
	return b.String()
}

func transcriptPreview(transcript string) string {
	trimmed := strings.Join(strings.Fields(transcript), " ")
	if trimmed == "" {
		return ""
	}
	runes := []rune(trimmed)
	if len(runes) <= transcriptPreviewLimit {
		return trimmed
	}
	return string(runes[:transcriptPreviewLimit]) + "..."
}
