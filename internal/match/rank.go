package match

import (
	"math"
	"sort"
)

// rankCandidates orders candidates best-first: similarity descending,
// then transcript presence, then closeness of the clip duration to the
// scene duration, then video path as a stable tiebreak.
func rankCandidates(cands []Candidate, sceneDuration float64) []Candidate {
	ranked := make([]Candidate, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		aHas, bHas := a.Transcript != "", b.Transcript != ""
		if aHas != bHas {
			return aHas
		}
		aFit := math.Abs(a.Duration() - sceneDuration)
		bFit := math.Abs(b.Duration() - sceneDuration)
		if aFit != bFit {
			return aFit < bFit
		}
		return a.VideoPath < b.VideoPath
	})
	return ranked
}

// fastPathEligible reports whether the top-ranked candidate can be
// auto-selected without arbitration: at least two candidates, the top
// score at or above the floor, and its margin over the runner-up at or
// above the configured minimum.
func fastPathEligible(ranked []Candidate, p Policy) bool {
	if len(ranked) < 2 {
		return false
	}
	top := ranked[0].Similarity
	if top < p.FastPathMinSimilarity {
		return false
	}
	return top-ranked[1].Similarity >= p.FastPathMargin
}
