package match

import (
	"context"
	"testing"

	"storyreel/internal/script"
)

func TestBuildQuery(t *testing.T) {
	cases := []struct {
		name  string
		scene script.Scene
		want  string
	}{
		{
			"all parts",
			script.Scene{NarrationExcerpt: "a market", VisualDescription: "wide shot", SearchQuery: "street vendors"},
			"a market | wide shot | street vendors",
		},
		{
			"empty parts skipped",
			script.Scene{NarrationExcerpt: "a market", VisualDescription: "  "},
			"a market",
		},
		{
			"all empty",
			script.Scene{},
			"",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildQuery(tc.scene); got != tc.want {
				t.Fatalf("BuildQuery = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRetrieveFiltersByMinSimilarityKeepingPrefilterBest(t *testing.T) {
	m := newTestMatcher(&fakeSearcher{segments: []Hit{
		hit("a.mp4", 0, 10, 0.60, ""),
		hit("b.mp4", 0, 10, 0.20, ""),
		hit("c.mp4", 0, 10, 0.34, ""),
	}}, nil, Policy{MinSimilarity: 0.35})

	ret, err := m.retrieve(context.Background(), testScene())
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(ret.Candidates) != 1 || ret.Candidates[0].VideoPath != "a.mp4" {
		t.Fatalf("only a.mp4 clears the threshold, got %+v", ret.Candidates)
	}
	if ret.BestPrefilter != 0.60 {
		t.Fatalf("BestPrefilter = %v, want 0.60", ret.BestPrefilter)
	}
}

func TestRetrieveEmptyQueryShortCircuits(t *testing.T) {
	search := &fakeSearcher{segments: []Hit{hit("a.mp4", 0, 10, 0.9, "")}}
	m := newTestMatcher(search, nil, Policy{})
	ret, err := m.retrieve(context.Background(), script.Scene{ID: "scene-x"})
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(ret.Candidates) != 0 || search.calls != 0 {
		t.Fatalf("empty query must not hit the searcher: %+v calls=%d", ret, search.calls)
	}
}

func TestGateByClusterOverlap(t *testing.T) {
	segments := []Hit{
		hit("a.mp4", 0, 10, 0.8, ""),
		hit("a.mp4", 50, 60, 0.7, ""),
		hit("b.mp4", 0, 10, 0.6, ""),
	}
	clusters := []Hit{hit("a.mp4", 5, 30, 0.9, "")}

	gated := gateByClusterOverlap(segments, clusters)
	if len(gated) != 1 || gated[0].Start != 0 || gated[0].VideoPath != "a.mp4" {
		t.Fatalf("only the overlapping a.mp4 segment should survive gating, got %+v", gated)
	}
}

func TestGateByClusterOverlapFallsBackWhenGatingEmpties(t *testing.T) {
	segments := []Hit{hit("a.mp4", 0, 10, 0.8, "")}
	clusters := []Hit{hit("b.mp4", 0, 10, 0.9, "")}
	if got := gateByClusterOverlap(segments, clusters); len(got) != 1 {
		t.Fatalf("gating that removes everything must fall back to ungated segments, got %+v", got)
	}
	if got := gateByClusterOverlap(segments, nil); len(got) != 1 {
		t.Fatalf("no cluster hits means no gating, got %+v", got)
	}
}

func TestRetrieveBothGranularityQueriesBothIndexes(t *testing.T) {
	search := &fakeSearcher{
		segments: []Hit{
			hit("a.mp4", 0, 10, 0.8, ""),
			hit("b.mp4", 0, 10, 0.7, ""),
		},
		clusters: []Hit{hit("a.mp4", 5, 30, 0.9, "")},
	}
	m := newTestMatcher(search, nil, Policy{MinSimilarity: 0.1, Granularity: GranularityBoth})

	ret, err := m.retrieve(context.Background(), testScene())
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if search.calls != 2 {
		t.Fatalf("both granularity should issue two searches, got %d", search.calls)
	}
	if len(ret.Candidates) != 1 || ret.Candidates[0].VideoPath != "a.mp4" {
		t.Fatalf("cluster gating should keep only a.mp4, got %+v", ret.Candidates)
	}
}

func TestRetrieveClustersGranularity(t *testing.T) {
	search := &fakeSearcher{clusters: []Hit{hit("c.mp4", 0, 40, 0.75, "speech")}}
	m := newTestMatcher(search, nil, Policy{MinSimilarity: 0.1, Granularity: GranularityClusters})

	ret, err := m.retrieve(context.Background(), testScene())
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(ret.Candidates) != 1 || ret.Candidates[0].VideoPath != "c.mp4" {
		t.Fatalf("cluster granularity should surface cluster hits, got %+v", ret.Candidates)
	}
}
