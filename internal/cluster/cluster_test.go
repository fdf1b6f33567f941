package cluster

import (
	"testing"
)

func seg(path string, start, end float64, ctx *InferredContext) VideoSegment {
	return VideoSegment{
		VideoPath:        path,
		TimestampStart:   start,
		TimestampEnd:     end,
		FrameDescription: "desc",
		Context:          ctx,
	}
}

func TestClusterSegmentsEmptyAndSingleton(t *testing.T) {
	if got := ClusterSegments(nil, Options{}); len(got) != 0 {
		t.Fatalf("empty input should yield no clusters, got %d", len(got))
	}
	clusters := ClusterSegments([]VideoSegment{seg("a.mp4", 0, 2, nil)}, Options{})
	if len(clusters) != 1 || len(clusters[0].Segments) != 1 || clusters[0].ID != 0 {
		t.Fatalf("single segment should yield one singleton cluster, got %+v", clusters)
	}
}

func TestClusterSegmentsGapIsHardCutoff(t *testing.T) {
	ctx := &InferredContext{People: []string{"maria"}, Location: "market"}
	for _, maxGap := range []float64{0.1, 1.0, 2.0, 5.0} {
		segments := []VideoSegment{
			seg("a.mp4", 0, 2, ctx),
			seg("a.mp4", 2+maxGap+0.01, 10, ctx),
		}
		clusters := ClusterSegments(segments, Options{MaxGap: maxGap})
		if len(clusters) != 2 {
			t.Fatalf("maxGap=%v: gap beyond cutoff must split, got %d clusters", maxGap, len(clusters))
		}
	}
}

func TestClusterSegmentsNoPairExceedsGap(t *testing.T) {
	segments := []VideoSegment{
		seg("a.mp4", 0, 1, nil),
		seg("a.mp4", 1.5, 3, nil),
		seg("a.mp4", 8, 9, nil),
		seg("a.mp4", 9.2, 10, nil),
		seg("a.mp4", 30, 31, nil),
	}
	clusters := ClusterSegments(segments, Options{MaxGap: 2})
	for _, c := range clusters {
		for i := 1; i < len(c.Segments); i++ {
			gap := c.Segments[i].TimestampStart - c.Segments[i-1].TimestampEnd
			if gap > 2 {
				t.Fatalf("cluster %d holds a pair with gap %v > maxGap", c.ID, gap)
			}
		}
	}
	if len(clusters) != 3 {
		t.Fatalf("expected 3 clusters, got %d", len(clusters))
	}
}

func TestClusterSegmentsTimeOnlyFallbackWithoutContext(t *testing.T) {
	segments := []VideoSegment{
		seg("a.mp4", 0, 2, nil),
		seg("a.mp4", 3, 5, &InferredContext{People: []string{"pedro"}}),
	}
	clusters := ClusterSegments(segments, Options{})
	if len(clusters) != 1 {
		t.Fatalf("missing context should degrade to time-only clustering, got %d clusters", len(clusters))
	}
}

func TestClusterSegmentsPeopleOverlapWithRolePrefixes(t *testing.T) {
	segments := []VideoSegment{
		seg("a.mp4", 0, 2, &InferredContext{People: []string{"male cyclist", "Maria"}, Location: "plaza"}),
		seg("a.mp4", 3, 5, &InferredContext{People: []string{"the cyclist"}, Location: "harbor"}),
	}
	clusters := ClusterSegments(segments, Options{})
	if len(clusters) != 1 {
		t.Fatalf("role-prefixed names should still overlap, got %d clusters", len(clusters))
	}
}

func TestClusterSegmentsLocationSimilarity(t *testing.T) {
	cases := []struct {
		name string
		locA string
		locB string
		want int
	}{
		{"exact", "Caracas market", "Caracas market", 1},
		{"substring", "market", "central market district", 1},
		{"shared words", "the old fish market", "fish market stalls", 1},
		{"unrelated", "airport terminal", "mountain trail", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			segments := []VideoSegment{
				seg("a.mp4", 0, 2, &InferredContext{People: []string{"ana"}, Location: tc.locA}),
				seg("a.mp4", 3, 5, &InferredContext{People: []string{"luis"}, Location: tc.locB}),
			}
			clusters := ClusterSegments(segments, Options{})
			if len(clusters) != tc.want {
				t.Fatalf("locations %q vs %q: got %d clusters, want %d", tc.locA, tc.locB, len(clusters), tc.want)
			}
		})
	}
}

func TestClusterSegmentsStoryContextKeywords(t *testing.T) {
	segments := []VideoSegment{
		seg("a.mp4", 0, 2, &InferredContext{
			People:       []string{"ana"},
			Location:     "street",
			StoryContext: "queueing for subsidized gasoline rations",
		}),
		seg("a.mp4", 3, 5, &InferredContext{
			People:       []string{"luis"},
			Location:     "gas station",
			StoryContext: "drivers queueing for gasoline rations overnight",
		}),
	}
	clusters := ClusterSegments(segments, Options{})
	if len(clusters) != 1 {
		t.Fatalf("shared story keywords should cluster, got %d clusters", len(clusters))
	}
}

func TestClusterSegmentsDisagreementOpensNewCluster(t *testing.T) {
	segments := []VideoSegment{
		seg("a.mp4", 0, 2, &InferredContext{People: []string{"ana"}, Location: "market", StoryContext: "selling fruit"}),
		seg("a.mp4", 2.5, 4, &InferredContext{People: []string{"carlos"}, Location: "rooftop", StoryContext: "city skyline drone shot"}),
		seg("a.mp4", 4.5, 6, &InferredContext{People: []string{"carlos"}, Location: "rooftop", StoryContext: "city skyline drone shot"}),
	}
	clusters := ClusterSegments(segments, Options{})
	if len(clusters) != 2 {
		t.Fatalf("expected split into 2 clusters, got %d", len(clusters))
	}
	if clusters[0].ID != 0 || clusters[1].ID != 1 {
		t.Fatalf("ids must be sequential from 0: %+v", clusters)
	}
	if len(clusters[1].Segments) != 2 {
		t.Fatalf("disagreeing segment should seed the next cluster, got %+v", clusters[1])
	}
}

func TestClusterSegmentsSortsByStartTime(t *testing.T) {
	segments := []VideoSegment{
		seg("a.mp4", 10, 12, nil),
		seg("a.mp4", 0, 2, nil),
		seg("a.mp4", 2.5, 4, nil),
	}
	clusters := ClusterSegments(segments, Options{})
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters after sorting, got %d", len(clusters))
	}
	if clusters[0].Start() != 0 || clusters[0].End() != 4 {
		t.Fatalf("first cluster should span the two early segments: %+v", clusters[0])
	}
}

func TestClusterDerivedAttributes(t *testing.T) {
	c := SceneCluster{Segments: []VideoSegment{
		{
			TimestampStart: 1, TimestampEnd: 3, Transcript: "hola",
			Context: &InferredContext{People: []string{"The Vendor", "maria"}, Location: "market"},
		},
		{
			TimestampStart: 3, TimestampEnd: 6, Transcript: "que tal",
			Context: &InferredContext{People: []string{"vendor"}, Location: "market"},
		},
	}}
	if c.Start() != 1 || c.End() != 6 {
		t.Fatalf("span = [%v,%v]", c.Start(), c.End())
	}
	people := c.People()
	if len(people) != 2 || people[0] != "maria" || people[1] != "vendor" {
		t.Fatalf("people = %v", people)
	}
	if locs := c.Locations(); len(locs) != 1 || locs[0] != "market" {
		t.Fatalf("locations = %v", locs)
	}
	if got := c.CombinedTranscript(); got != "hola que tal" {
		t.Fatalf("combined transcript = %q", got)
	}
}
