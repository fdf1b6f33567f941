package library

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"storyreel/internal/match"
	"storyreel/internal/textnorm"
)

// Search scores stored footage against a free-text query and returns
// the best hits. The score is the fraction of query tokens present in
// the row's descriptive text, so it lands in [0,1] like the similarity
// scores an embedding service would report. Implements match.Searcher.
func (s *Store) Search(ctx context.Context, query string, limit int, granularity match.Granularity, project string) ([]match.Hit, error) {
	queryTokens := textnorm.Tokens(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 8
	}

	var hits []match.Hit
	var err error
	if granularity == match.GranularityClusters {
		hits, err = s.searchClusters(ctx, project, queryTokens)
	} else {
		hits, err = s.searchSegments(ctx, project, queryTokens)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].VideoPath < hits[j].VideoPath
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *Store) searchSegments(ctx context.Context, project string, queryTokens []string) ([]match.Hit, error) {
	segments, err := s.ListSegments(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("search segments: %w", err)
	}

	var hits []match.Hit
	for _, seg := range segments {
		text := strings.Join([]string{seg.FrameDescription, seg.Transcript, seg.CombinedSummary}, " ")
		if seg.Context != nil {
			text += " " + strings.Join(seg.Context.People, " ") + " " + seg.Context.Location + " " + seg.Context.StoryContext
		}
		score := tokenOverlap(queryTokens, text)
		if score == 0 {
			continue
		}
		hit := match.Hit{
			VideoPath:   seg.VideoPath,
			Start:       seg.TimestampStart,
			End:         seg.TimestampEnd,
			Description: seg.FrameDescription,
			Transcript:  seg.Transcript,
			Score:       score,
		}
		if seg.Context != nil {
			hit.People = seg.Context.People
			hit.Location = seg.Context.Location
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (s *Store) searchClusters(ctx context.Context, project string, queryTokens []string) ([]match.Hit, error) {
	records, err := s.ListClusters(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("search clusters: %w", err)
	}

	var hits []match.Hit
	for _, rec := range records {
		text := rec.Summary + " " + rec.Transcript + " " + strings.Join(rec.People, " ")
		score := tokenOverlap(queryTokens, text)
		if score == 0 {
			continue
		}
		hits = append(hits, match.Hit{
			VideoPath:   rec.VideoPath,
			Start:       rec.StartSeconds,
			End:         rec.EndSeconds,
			Description: rec.Summary,
			Transcript:  rec.Transcript,
			Score:       score,
			People:      rec.People,
		})
	}
	return hits, nil
}

// tokenOverlap returns the fraction of query tokens found in text.
func tokenOverlap(queryTokens []string, text string) float64 {
	corpus := make(map[string]struct{})
	for _, tok := range textnorm.Tokens(text) {
		corpus[tok] = struct{}{}
	}
	if len(corpus) == 0 {
		return 0
	}
	matched := 0
	for _, tok := range queryTokens {
		if _, ok := corpus[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

var _ match.Searcher = (*Store)(nil)
