package cluster

import (
	"sort"
	"strings"
)

// InferredContext is an optional per-segment annotation produced by an
// upstream vision indexer. All fields may be empty.
type InferredContext struct {
	People       []string `json:"people,omitempty"`
	Location     string   `json:"location,omitempty"`
	StoryContext string   `json:"story_context,omitempty"`
	Objects      []string `json:"objects,omitempty"`
	Confidence   float64  `json:"confidence,omitempty"`
}

// VideoSegment is one unit of indexed footage. Segments are immutable
// once produced by the indexer.
type VideoSegment struct {
	VideoPath        string           `json:"video_path"`
	TimestampStart   float64          `json:"timestamp_start"`
	TimestampEnd     float64          `json:"timestamp_end"`
	FrameDescription string           `json:"frame_description"`
	Transcript       string           `json:"transcript,omitempty"`
	CombinedSummary  string           `json:"combined_summary,omitempty"`
	Context          *InferredContext `json:"inferred_context,omitempty"`
}

// SceneCluster is a maximal run of temporally adjacent segments sharing
// people, location or context signal. Derived attributes are computed
// from the segments rather than stored.
type SceneCluster struct {
	ID       int            `json:"id"`
	Segments []VideoSegment `json:"segments"`
	Summary  string         `json:"cluster_summary,omitempty"`
}

// Start returns the earliest segment start in the cluster.
func (c SceneCluster) Start() float64 {
	if len(c.Segments) == 0 {
		return 0
	}
	return c.Segments[0].TimestampStart
}

// End returns the latest segment end in the cluster.
func (c SceneCluster) End() float64 {
	if len(c.Segments) == 0 {
		return 0
	}
	return c.Segments[len(c.Segments)-1].TimestampEnd
}

// People returns the deduplicated, normalized person names across all
// segments, sorted for stable output.
func (c SceneCluster) People() []string {
	seen := map[string]struct{}{}
	for _, seg := range c.Segments {
		if seg.Context == nil {
			continue
		}
		for _, p := range seg.Context.People {
			if name := normalizePersonName(p); name != "" {
				seen[name] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	people := make([]string, 0, len(seen))
	for name := range seen {
		people = append(people, name)
	}
	sort.Strings(people)
	return people
}

// Locations returns the distinct raw location strings across segments.
func (c SceneCluster) Locations() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, seg := range c.Segments {
		if seg.Context == nil {
			continue
		}
		loc := strings.TrimSpace(seg.Context.Location)
		if loc == "" {
			continue
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		out = append(out, loc)
	}
	return out
}

// CombinedTranscript joins the non-empty segment transcripts in order.
func (c SceneCluster) CombinedTranscript() string {
	var parts []string
	for _, seg := range c.Segments {
		if t := strings.TrimSpace(seg.Transcript); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
