package match

import "time"

// Policy centralizes matching thresholds and batch behavior.
type Policy struct {
	// MinSimilarity drops retrieval hits scoring below it.
	MinSimilarity float64
	// FastPathMinSimilarity is the floor the top candidate must reach
	// before arbitration can be skipped.
	FastPathMinSimilarity float64
	// FastPathMargin is the lead the top candidate must hold over the
	// runner-up before arbitration can be skipped.
	FastPathMargin float64
	// SkipEdgePercent is the share of a clip's duration discarded from
	// its start when tailoring, avoiding footage-transition artifacts.
	SkipEdgePercent float64
	// SearchLimit caps hits requested per search call.
	SearchLimit int
	// Granularity selects the index tier: segments, clusters or both.
	Granularity Granularity
	// Project optionally restricts retrieval to one footage project.
	Project string
	// RetryMaxAttempts bounds generative-text calls per arbitration.
	RetryMaxAttempts int
	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration
	// Workers bounds concurrent scene matching in a batch.
	Workers int
}

// DefaultPolicy returns conservative defaults tuned for short-form
// narration videos.
func DefaultPolicy() Policy {
	return Policy{
		MinSimilarity:         0.35,
		FastPathMinSimilarity: 0.90,
		FastPathMargin:        0.15,
		SkipEdgePercent:       0.07,
		SearchLimit:           8,
		Granularity:           GranularitySegments,
		RetryMaxAttempts:      3,
		RetryBaseDelay:        500 * time.Millisecond,
		Workers:               4,
	}
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()
	if p.MinSimilarity < 0 || p.MinSimilarity >= 1 {
		p.MinSimilarity = d.MinSimilarity
	}
	if p.FastPathMinSimilarity <= 0 || p.FastPathMinSimilarity > 1 {
		p.FastPathMinSimilarity = d.FastPathMinSimilarity
	}
	if p.FastPathMargin <= 0 || p.FastPathMargin > 1 {
		p.FastPathMargin = d.FastPathMargin
	}
	if p.SkipEdgePercent < 0 || p.SkipEdgePercent >= 0.5 {
		p.SkipEdgePercent = d.SkipEdgePercent
	}
	if p.SearchLimit <= 0 {
		p.SearchLimit = d.SearchLimit
	}
	switch p.Granularity {
	case GranularitySegments, GranularityClusters, GranularityBoth:
	default:
		p.Granularity = d.Granularity
	}
	if p.RetryMaxAttempts <= 0 {
		p.RetryMaxAttempts = d.RetryMaxAttempts
	}
	if p.RetryBaseDelay <= 0 {
		p.RetryBaseDelay = d.RetryBaseDelay
	}
	if p.Workers <= 0 {
		p.Workers = d.Workers
	}
	return p
}
