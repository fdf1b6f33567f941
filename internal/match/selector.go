package match

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"storyreel/internal/script"
)

// Matcher orchestrates retrieval, ranking, arbitration and tailoring for
// narration scenes. The selection cache is owned by the instance; an
// unchanged scene/candidate set never re-invokes the LLM.
type Matcher struct {
	search Searcher
	llm    TextGenerator
	policy Policy
	logger *slog.Logger

	mu       sync.Mutex
	cache    map[string]Result
	progress func(done, total int)
	sleeper  func(time.Duration)
}

// Option customizes a Matcher.
type Option func(*Matcher)

// WithProgress installs a callback invoked once per completed scene
// during batch matching, under the matcher lock.
func WithProgress(fn func(done, total int)) Option {
	return func(m *Matcher) {
		m.progress = fn
	}
}

// WithSleeper overrides how retry backoff sleeps are performed (useful
// for tests).
func WithSleeper(fn func(time.Duration)) Option {
	return func(m *Matcher) {
		m.sleeper = fn
	}
}

// NewMatcher constructs a matcher. The searcher is required; a nil llm
// disables arbitration, in which case ambiguous candidate sets fall back
// to the top-ranked candidate.
func NewMatcher(search Searcher, llm TextGenerator, policy Policy, logger *slog.Logger, opts ...Option) *Matcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &Matcher{
		search: search,
		llm:    llm,
		policy: policy.normalized(),
		logger: logger.With("component", "matcher"),
		cache:  make(map[string]Result),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MatchScene resolves the best clip for one scene. A nil decision with a
// nil error means no candidate was usable; callers skip the scene.
func (m *Matcher) MatchScene(ctx context.Context, scene script.Scene) (*Decision, error) {
	if m.search == nil {
		return nil, errNoSearcher
	}
	ret, err := m.retrieve(ctx, scene)
	if err != nil {
		return nil, err
	}
	if len(ret.Candidates) == 0 {
		m.logger.Debug("no usable candidates",
			"scene", scene.ID,
			"best_prefilter", ret.BestPrefilter,
			"min_similarity", m.policy.MinSimilarity)
		return nil, nil
	}

	ranked := rankCandidates(ret.Candidates, scene.SceneDuration())
	result, ok, err := m.selectAmong(ctx, scene, ranked)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	chosen := ranked[result.SelectedIndex]
	return &Decision{
		Candidate:     chosen,
		Index:         result.SelectedIndex,
		Reasoning:     result.Reasoning,
		Confidence:    result.Confidence,
		TailoredStart: result.TailoredStart,
		TailoredEnd:   result.TailoredEnd,
	}, nil
}

func (m *Matcher) selectAmong(ctx context.Context, scene script.Scene, ranked []Candidate) (Result, bool, error) {
	sceneDuration := scene.SceneDuration()

	if len(ranked) == 1 {
		return m.accept(ranked, 0, "single candidate", ranked[0].Similarity, sceneDuration), true, nil
	}
	if fastPathEligible(ranked, m.policy) {
		reason := fmt.Sprintf("fast path: similarity %.3f leads runner-up by %.3f",
			ranked[0].Similarity, ranked[0].Similarity-ranked[1].Similarity)
		return m.accept(ranked, 0, reason, ranked[0].Similarity, sceneDuration), true, nil
	}

	key := selectionKey(scene, ranked)
	m.mu.Lock()
	cached, hit := m.cache[key]
	m.mu.Unlock()
	if hit {
		return cached, cached.SelectedIndex >= 0, nil
	}

	result, ok, err := m.arbitrate(ctx, scene, ranked)
	if err != nil {
		// A cancelled arbitration is not a verdict; caching it would
		// replay a cancellation artifact on every later call.
		return Result{}, false, err
	}
	m.mu.Lock()
	m.cache[key] = result
	m.mu.Unlock()
	return result, ok, nil
}

func (m *Matcher) accept(ranked []Candidate, index int, reasoning string, confidence, sceneDuration float64) Result {
	c := ranked[index]
	start, end := ComputeSmartClip(c.TimestampStart, c.TimestampEnd, sceneDuration, m.policy.SkipEdgePercent)
	return Result{
		SelectedIndex: index,
		Reasoning:     reasoning,
		Confidence:    confidence,
		TailoredStart: start,
		TailoredEnd:   end,
	}
}

// arbitrate asks the LLM to pick among candidates. Provider and parse
// failures fall back deterministically to the top-ranked candidate at
// confidence 0.5; an index of -1 or out of range propagates as no
// match. Cancellation is the exception: it returns an error so the
// scene stays unmatched and nothing is cached.
func (m *Matcher) arbitrate(ctx context.Context, scene script.Scene, ranked []Candidate) (Result, bool, error) {
	sceneDuration := scene.SceneDuration()
	if m.llm == nil {
		return m.accept(ranked, 0, "no arbitration collaborator; defaulted to top-ranked candidate", 0.5, sceneDuration), true, nil
	}

	raw, err := m.generateWithRetry(ctx, buildSelectionPrompt(scene, ranked))
	if err != nil {
		if cancelled(ctx, err) {
			return Result{}, false, err
		}
		m.logger.Warn("arbitration call failed; defaulting to top-ranked candidate",
			"scene", scene.ID, "error", err)
		reason := fmt.Sprintf("arbitration call failed (%v); defaulted to top-ranked candidate", err)
		return m.accept(ranked, 0, reason, 0.5, sceneDuration), true, nil
	}

	sel, ok := parseSelection(raw)
	if !ok {
		m.logger.Warn("arbitration response did not parse; defaulting to top-ranked candidate",
			"scene", scene.ID)
		return m.accept(ranked, 0, "arbitration response did not parse; defaulted to top-ranked candidate", 0.5, sceneDuration), true, nil
	}
	if sel.Index < 0 || sel.Index >= len(ranked) {
		reason := sel.Reasoning
		if reason == "" {
			reason = "no candidate accepted"
		}
		return Result{SelectedIndex: -1, Reasoning: reason, Confidence: sel.Confidence}, false, nil
	}
	return m.accept(ranked, sel.Index, sel.Reasoning, sel.Confidence, sceneDuration), true, nil
}

// cancelled reports whether err (or the context itself) represents
// cancellation rather than a provider failure.
func cancelled(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

var rateLimitSignatures = []string{"429", "rate limit", "resource_exhausted"}

func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range rateLimitSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// generateWithRetry wraps the generative call with bounded retry and
// exponential backoff, applied only to rate-limit failures. All other
// errors return immediately for local fallback handling.
func (m *Matcher) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	delay := m.policy.RetryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= m.policy.RetryMaxAttempts; attempt++ {
		if attempt > 1 {
			if err := m.sleep(ctx, delay); err != nil {
				return "", err
			}
			delay *= 2
		}
		out, err := m.llm.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if !isRateLimited(err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("rate limited after %d attempts: %w", m.policy.RetryMaxAttempts, lastErr)
}

func (m *Matcher) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if m.sleeper != nil {
		m.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// selectionKey hashes the scene identity together with the ordered
// candidate set. Scene duration and similarities are rounded so float
// noise does not defeat memoization.
func selectionKey(scene script.Scene, ranked []Candidate) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%.2f", scene.ID, scene.SceneDuration())
	for _, c := range ranked {
		fmt.Fprintf(h, "|%s|%.3f|%.3f|%.4f", c.VideoPath, c.TimestampStart, c.TimestampEnd, c.Similarity)
	}
	return hex.EncodeToString(h.Sum(nil))
}

var errNoSearcher = errors.New("matcher: searcher required")
