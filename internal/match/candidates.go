package match

import (
	"context"
	"fmt"
	"strings"

	"storyreel/internal/script"
)

// BuildQuery joins the scene's narration excerpt, visual description and
// explicit search query with " | ", skipping empty parts.
func BuildQuery(scene script.Scene) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{scene.NarrationExcerpt, scene.VisualDescription, scene.SearchQuery} {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " | ")
}

// Retrieval carries the filtered candidate set for one scene plus
// diagnostics about what the filter discarded.
type Retrieval struct {
	Candidates []Candidate
	// BestPrefilter is the highest similarity seen before the
	// min-similarity filter, kept even when every hit was dropped.
	BestPrefilter float64
}

func (m *Matcher) retrieve(ctx context.Context, scene script.Scene) (Retrieval, error) {
	query := BuildQuery(scene)
	if query == "" {
		return Retrieval{}, nil
	}

	var hits []Hit
	switch m.policy.Granularity {
	case GranularityClusters:
		clusterHits, err := m.search.Search(ctx, query, m.policy.SearchLimit, GranularityClusters, m.policy.Project)
		if err != nil {
			return Retrieval{}, fmt.Errorf("search clusters: %w", err)
		}
		hits = clusterHits
	case GranularityBoth:
		segmentHits, err := m.search.Search(ctx, query, m.policy.SearchLimit, GranularitySegments, m.policy.Project)
		if err != nil {
			return Retrieval{}, fmt.Errorf("search segments: %w", err)
		}
		clusterHits, err := m.search.Search(ctx, query, m.policy.SearchLimit, GranularityClusters, m.policy.Project)
		if err != nil {
			return Retrieval{}, fmt.Errorf("search clusters: %w", err)
		}
		hits = gateByClusterOverlap(segmentHits, clusterHits)
	default:
		segmentHits, err := m.search.Search(ctx, query, m.policy.SearchLimit, GranularitySegments, m.policy.Project)
		if err != nil {
			return Retrieval{}, fmt.Errorf("search segments: %w", err)
		}
		hits = segmentHits
	}

	var ret Retrieval
	for _, h := range hits {
		if h.Score > ret.BestPrefilter {
			ret.BestPrefilter = h.Score
		}
		if h.Score < m.policy.MinSimilarity {
			continue
		}
		ret.Candidates = append(ret.Candidates, Candidate{
			VideoPath:      h.VideoPath,
			TimestampStart: h.Start,
			TimestampEnd:   h.End,
			Description:    h.Description,
			Transcript:     h.Transcript,
			Similarity:     h.Score,
			People:         h.People,
			Location:       h.Location,
		})
	}
	ret.Candidates = dedupeCandidates(ret.Candidates)
	return ret, nil
}

// gateByClusterOverlap keeps segment hits overlapping at least one
// cluster hit's time range in the same video. When gating removes
// everything, the ungated segment list is returned instead so a sparse
// cluster index cannot blank out retrieval.
func gateByClusterOverlap(segmentHits, clusterHits []Hit) []Hit {
	if len(clusterHits) == 0 {
		return segmentHits
	}
	var gated []Hit
	for _, s := range segmentHits {
		for _, c := range clusterHits {
			if s.VideoPath == c.VideoPath && s.Start < c.End && c.Start < s.End {
				gated = append(gated, s)
				break
			}
		}
	}
	if len(gated) == 0 {
		return segmentHits
	}
	return gated
}

type candidateKey struct {
	path       string
	start, end float64
}

// dedupeCandidates keeps one candidate per (video_path, start, end) key,
// retaining the highest similarity among duplicates. Relative order of
// the survivors is preserved.
func dedupeCandidates(cands []Candidate) []Candidate {
	if len(cands) < 2 {
		return cands
	}
	best := make(map[candidateKey]int, len(cands))
	out := cands[:0]
	for _, c := range cands {
		key := candidateKey{path: c.VideoPath, start: c.TimestampStart, end: c.TimestampEnd}
		if idx, ok := best[key]; ok {
			if c.Similarity > out[idx].Similarity {
				out[idx] = c
			}
			continue
		}
		best[key] = len(out)
		out = append(out, c)
	}
	return out
}
