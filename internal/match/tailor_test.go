package match

import (
	"math"
	"testing"
)

func TestComputeSmartClipContainmentAndLength(t *testing.T) {
	const tolerance = 1e-9
	cases := []struct {
		name          string
		start, end    float64
		sceneDuration float64
		skipEdge      float64
	}{
		{"short scene near front", 10, 40, 3, 0.07},
		{"half-length scene", 0, 20, 10, 0.07},
		{"near-full-length scene", 5, 15, 9, 0.07},
		{"scene longer than clip", 0, 10, 30, 0.07},
		{"zero edge skip", 2, 12, 4, 0},
		{"tiny clip", 0, 0.5, 0.1, 0.07},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotStart, gotEnd := ComputeSmartClip(tc.start, tc.end, tc.sceneDuration, tc.skipEdge)
			if gotStart < tc.start-tolerance || gotEnd > tc.end+tolerance {
				t.Fatalf("window [%v,%v] escapes candidate bounds [%v,%v]", gotStart, gotEnd, tc.start, tc.end)
			}
			if gotEnd < gotStart {
				t.Fatalf("inverted window [%v,%v]", gotStart, gotEnd)
			}
			usable := (tc.end - tc.start) * (1 - tc.skipEdge)
			wantLen := math.Min(tc.sceneDuration, usable)
			if gotLen := gotEnd - gotStart; math.Abs(gotLen-wantLen) > tolerance {
				t.Fatalf("window length = %v, want %v", gotLen, wantLen)
			}
		})
	}
}

func TestComputeSmartClipSkipsLeadingEdge(t *testing.T) {
	start, _ := ComputeSmartClip(0, 100, 5, 0.07)
	if start < 7 {
		t.Fatalf("tailored start %v should sit past the 7%% edge skip", start)
	}
}

func TestComputeSmartClipPlacement(t *testing.T) {
	// Short scenes sit near the front of the usable footage; longer
	// scenes drift toward center.
	shortStart, _ := ComputeSmartClip(0, 100, 5, 0)
	longStart, _ := ComputeSmartClip(0, 100, 80, 0)
	shortOffset := shortStart
	longOffset := longStart
	if shortOffset > longOffset {
		t.Fatalf("short scene offset %v should not exceed long scene offset %v", shortOffset, longOffset)
	}
	// offset = slack * ratio * 0.5; for a 5s scene in 100s: 95*0.025.
	if want := 95 * 0.025; math.Abs(shortStart-want) > 1e-9 {
		t.Fatalf("short scene start = %v, want %v", shortStart, want)
	}
}

func TestComputeSmartClipZeroSceneDurationKeepsUsableWindow(t *testing.T) {
	const tolerance = 1e-9
	start, end := ComputeSmartClip(10, 20, 0, 0.07)
	if end-start <= 0 {
		t.Fatalf("duration-less scene must not collapse to an empty window: [%v,%v]", start, end)
	}
	if math.Abs(start-10.7) > tolerance || end != 20 {
		t.Fatalf("expected the whole usable window [10.7,20], got [%v,%v]", start, end)
	}
}

func TestComputeSmartClipDegenerateClip(t *testing.T) {
	s, e := ComputeSmartClip(5, 5, 3, 0.07)
	if s != 5 || e != 5 {
		t.Fatalf("zero-length clip should pass through, got [%v,%v]", s, e)
	}
}
