package cluster

import (
	"sort"
)

// Defaults for the clustering predicate.
const (
	DefaultMaxGap           = 2.0
	DefaultMinPeopleOverlap = 0.3

	storyContextMinJaccard = 0.3
	locationMinSharedRatio = 0.5
)

// Options tunes the clustering predicate. Zero values fall back to the
// package defaults.
type Options struct {
	// MaxGap is the hard cutoff in seconds between a segment's end and
	// the next segment's start. Larger gaps never cluster.
	MaxGap float64
	// MinPeopleOverlap is the minimum Jaccard overlap between the
	// normalized person sets of adjacent segments.
	MinPeopleOverlap float64
}

func (o Options) normalized() Options {
	if o.MaxGap <= 0 {
		o.MaxGap = DefaultMaxGap
	}
	if o.MinPeopleOverlap <= 0 || o.MinPeopleOverlap > 1 {
		o.MinPeopleOverlap = DefaultMinPeopleOverlap
	}
	return o
}

// ClusterSegments sorts segments by start time and walks adjacent pairs,
// opening a new cluster whenever the pair disagrees under the clustering
// predicate. Cluster ids are assigned sequentially from 0. Empty input
// yields an empty slice; a single segment yields one singleton cluster.
func ClusterSegments(segments []VideoSegment, opts Options) []SceneCluster {
	opts = opts.normalized()
	if len(segments) == 0 {
		return []SceneCluster{}
	}

	sorted := make([]VideoSegment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimestampStart < sorted[j].TimestampStart
	})

	clusters := []SceneCluster{{ID: 0, Segments: []VideoSegment{sorted[0]}}}
	for _, seg := range sorted[1:] {
		current := &clusters[len(clusters)-1]
		prev := current.Segments[len(current.Segments)-1]
		if shouldClusterTogether(prev, seg, opts) {
			current.Segments = append(current.Segments, seg)
			continue
		}
		clusters = append(clusters, SceneCluster{ID: len(clusters), Segments: []VideoSegment{seg}})
	}
	return clusters
}

// shouldClusterTogether decides whether curr continues prev's cluster.
// Time gap is a hard cutoff; with context on both sides the first
// matching signal wins, in priority order: people, location, story
// context. Missing context on either side degrades to time-only.
func shouldClusterTogether(prev, curr VideoSegment, opts Options) bool {
	if curr.TimestampStart-prev.TimestampEnd > opts.MaxGap {
		return false
	}
	if prev.Context == nil || curr.Context == nil {
		return true
	}
	if peopleOverlap(prev.Context.People, curr.Context.People) >= opts.MinPeopleOverlap {
		return true
	}
	if locationsSimilar(prev.Context.Location, curr.Context.Location) {
		return true
	}
	return storyContextsSimilar(prev.Context.StoryContext, curr.Context.StoryContext)
}
