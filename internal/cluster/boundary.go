package cluster

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// TextGenerator is the generative-text collaborator used for boundary
// questions. Implementations may fail transiently; refinement treats
// every failure as "no split".
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BoundaryDetector refines heuristic clusters by asking the LLM a yes/no
// story-boundary question between adjacent segments.
type BoundaryDetector struct {
	llm    TextGenerator
	logger *slog.Logger
}

// NewBoundaryDetector constructs a detector. A nil logger disables
// diagnostic logging.
func NewBoundaryDetector(llm TextGenerator, logger *slog.Logger) *BoundaryDetector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BoundaryDetector{llm: llm, logger: logger.With("component", "boundary-detector")}
}

// RefineClusters asks, for every adjacent segment pair inside a
// multi-segment cluster, whether a story boundary falls between them; a
// YES answer splits the cluster there. Collaborator failures and any
// non-YES answer default to not splitting, so refinement can only ever
// narrow clusters and never errors out.
func (d *BoundaryDetector) RefineClusters(ctx context.Context, clusters []SceneCluster) []SceneCluster {
	if d == nil || d.llm == nil {
		return clusters
	}
	var refined []SceneCluster
	for _, c := range clusters {
		if len(c.Segments) < 2 {
			refined = append(refined, c)
			continue
		}
		refined = append(refined, d.splitCluster(ctx, c)...)
	}
	for i := range refined {
		refined[i].ID = i
	}
	return refined
}

func (d *BoundaryDetector) splitCluster(ctx context.Context, c SceneCluster) []SceneCluster {
	out := []SceneCluster{{Segments: []VideoSegment{c.Segments[0]}, Summary: c.Summary}}
	for i := 1; i < len(c.Segments); i++ {
		prev := c.Segments[i-1]
		curr := c.Segments[i]
		if d.isBoundary(ctx, prev, curr) {
			out = append(out, SceneCluster{Segments: []VideoSegment{curr}})
			continue
		}
		last := &out[len(out)-1]
		last.Segments = append(last.Segments, curr)
	}
	return out
}

func (d *BoundaryDetector) isBoundary(ctx context.Context, prev, curr VideoSegment) bool {
	answer, err := d.llm.Generate(ctx, boundaryPrompt(prev, curr))
	if err != nil {
		d.logger.Debug("boundary question failed; keeping segments together", "error", err)
		return false
	}
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(answer)), "YES")
}

func boundaryPrompt(prev, curr VideoSegment) string {
	var b strings.Builder
	b.WriteString("You are reviewing two consecutive clips from the same footage file.\n")
	b.WriteString("Decide whether a NEW story moment begins at the second clip.\n\n")
	writeSegmentBlock(&b, "Clip A", prev)
	writeSegmentBlock(&b, "Clip B", curr)
	b.WriteString("\nAnswer with exactly YES (new story moment) or NO (same story moment).")
	return b.String()
}

func writeSegmentBlock(b *strings.Builder, label string, seg VideoSegment) {
	fmt.Fprintf(b, "%s (%.1fs-%.1fs): %s\n", label, seg.TimestampStart, seg.TimestampEnd, seg.FrameDescription)
	if t := strings.TrimSpace(seg.Transcript); t != "" {
		fmt.Fprintf(b, "%s speech: %s\n", label, t)
	}
	if seg.Context != nil {
		if len(seg.Context.People) > 0 {
			fmt.Fprintf(b, "%s people: %s\n", label, strings.Join(seg.Context.People, ", "))
		}
		if seg.Context.Location != "" {
			fmt.Fprintf(b, "%s location: %s\n", label, seg.Context.Location)
		}
	}
}
