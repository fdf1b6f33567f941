package match

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"storyreel/internal/script"
)

// Report aggregates one batch matching run.
type Report struct {
	RunID   string `json:"run_id"`
	Matched int    `json:"matched"`
	Skipped int    `json:"skipped"`
	NoMatch int    `json:"no_match"`
}

// MatchBatch matches every scene concurrently under the policy's worker
// bound, writing decisions back into the scenes' LibraryMatch fields.
// Scenes that already carry a match are skipped. The batch always runs
// to completion (failures count as no-match) unless the context is
// cancelled, in which case unprocessed and in-flight scenes are left
// untouched and the partial report is returned with the context error.
// A scene's match is published all-or-nothing, and a cancelled
// arbitration neither publishes a fallback nor leaves a cache entry
// behind.
func (m *Matcher) MatchBatch(ctx context.Context, scenes []script.Scene) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	if len(scenes) == 0 {
		return report, nil
	}

	total := len(scenes)
	jobs := make(chan int)
	var wg sync.WaitGroup
	done := 0

	for w := 0; w < m.policy.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				m.matchOne(ctx, scenes, idx, total, &report, &done)
			}
		}()
	}

feed:
	for idx := range scenes {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	m.logger.Info("batch matching finished",
		"run_id", report.RunID,
		"matched", report.Matched,
		"skipped", report.Skipped,
		"no_match", report.NoMatch)
	return report, ctx.Err()
}

// matchOne processes a single scene and updates shared batch state. The
// progress counter advances exactly once per scene regardless of
// outcome.
func (m *Matcher) matchOne(ctx context.Context, scenes []script.Scene, idx, total int, report *Report, done *int) {
	defer func() {
		m.mu.Lock()
		*done++
		if m.progress != nil {
			m.progress(*done, total)
		}
		m.mu.Unlock()
	}()

	if scenes[idx].LibraryMatch != nil {
		m.mu.Lock()
		report.Skipped++
		m.mu.Unlock()
		return
	}

	decision, err := m.MatchScene(ctx, scenes[idx])
	switch {
	case err != nil:
		if cancelled(ctx, err) {
			return
		}
		m.logger.Warn("scene match failed", "scene", scenes[idx].ID, "error", err)
		m.mu.Lock()
		report.NoMatch++
		m.mu.Unlock()
	case decision == nil:
		m.mu.Lock()
		report.NoMatch++
		m.mu.Unlock()
	default:
		matched := &script.LibraryMatch{
			VideoPath:    decision.Candidate.VideoPath,
			StartSeconds: decision.TailoredStart,
			EndSeconds:   decision.TailoredEnd,
			Confidence:   decision.Confidence,
			Reasoning:    decision.Reasoning,
		}
		m.mu.Lock()
		scenes[idx].LibraryMatch = matched
		report.Matched++
		m.mu.Unlock()
	}
}
