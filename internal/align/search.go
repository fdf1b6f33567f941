package align

import (
	"strings"

	"storyreel/internal/textnorm"
)

// DefaultFuzzyThreshold is the minimum fuzzy-tier score accepted when
// the caller does not supply one.
const DefaultFuzzyThreshold = 0.5

// Span is a matched run of transcript words. EndIndex is inclusive.
type Span struct {
	StartIndex int
	EndIndex   int
	Confidence float64
}

// FindTextInWords locates a narration excerpt inside the word stream,
// scanning from startIndex. Three tiers run in order and the first that
// succeeds wins:
//
//  1. exact: a window of |query| words whose normalized join equals the
//     normalized query (confidence 1.0)
//  2. prefix expansion: anchor on the first one or two query tokens,
//     then greedily collect remaining tokens within 2x|query| words
//  3. fuzzy: anchor on the first token (exact or prefix containment),
//     walk forward tolerating a single filler token, scan capped at
//     1.5x|query|; only scores >= fuzzyThreshold are accepted
//
// The ordering trades precision for recall against noisy ASR output and
// is deliberate; the reported confidence stays honest about which tier
// produced the match.
func FindTextInWords(query string, words []WordTimestamp, startIndex int, fuzzyThreshold float64) (Span, bool) {
	qTokens := textnorm.Tokens(query)
	if len(qTokens) == 0 || len(words) == 0 {
		return Span{}, false
	}
	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex >= len(words) {
		return Span{}, false
	}
	if fuzzyThreshold <= 0 {
		fuzzyThreshold = DefaultFuzzyThreshold
	}

	wTokens := make([]string, len(words))
	for i, w := range words {
		wTokens[i] = textnorm.Normalize(w.Word)
	}

	if span, ok := exactWindow(qTokens, wTokens, startIndex); ok {
		return span, true
	}
	if span, ok := prefixExpansion(qTokens, wTokens, startIndex); ok {
		return span, true
	}
	return fuzzyWalk(qTokens, wTokens, startIndex, fuzzyThreshold)
}

func exactWindow(qTokens, wTokens []string, startIndex int) (Span, bool) {
	target := strings.Join(qTokens, " ")
	n := len(qTokens)
	for start := startIndex; start+n <= len(wTokens); start++ {
		if joinWindow(wTokens, start, n) == target {
			return Span{StartIndex: start, EndIndex: start + n - 1, Confidence: 1.0}, true
		}
	}
	return Span{}, false
}

func prefixExpansion(qTokens, wTokens []string, startIndex int) (Span, bool) {
	prefixLen := 2
	if len(qTokens) < prefixLen {
		prefixLen = len(qTokens)
	}
	for start := startIndex; start+prefixLen <= len(wTokens); start++ {
		if !windowEquals(wTokens, start, qTokens[:prefixLen]) {
			continue
		}
		matched := prefixLen
		lastIdx := start + prefixLen - 1
		qi := prefixLen
		// Allow ASR insertions: scan ahead up to twice the query length
		// for the remaining tokens in order.
		limit := start + 2*len(qTokens)
		for wi := start + prefixLen; wi < len(wTokens) && wi < limit && qi < len(qTokens); wi++ {
			if wTokens[wi] == qTokens[qi] {
				matched++
				lastIdx = wi
				qi++
			}
		}
		confidence := float64(matched) / float64(len(qTokens))
		if confidence > 1.0 {
			confidence = 1.0
		}
		return Span{StartIndex: start, EndIndex: lastIdx, Confidence: confidence}, true
	}
	return Span{}, false
}

func fuzzyWalk(qTokens, wTokens []string, startIndex int, threshold float64) (Span, bool) {
	scanLimit := int(1.5 * float64(len(qTokens)))
	if scanLimit < 1 {
		scanLimit = 1
	}

	var best Span
	found := false
	for start := startIndex; start < len(wTokens); start++ {
		if !anchorMatches(wTokens[start], qTokens[0]) {
			continue
		}
		matched := 0
		qi := 0
		lastIdx := start
		skipped := false
		for wi := start; wi < len(wTokens) && wi-start <= scanLimit && qi < len(qTokens); {
			if wTokens[wi] == qTokens[qi] {
				matched++
				lastIdx = wi
				wi++
				qi++
				continue
			}
			if !skipped {
				// One filler token in the narration is tolerated.
				skipped = true
				qi++
				continue
			}
			break
		}
		score := float64(matched) / float64(len(qTokens))
		if !found || score > best.Confidence {
			best = Span{StartIndex: start, EndIndex: lastIdx, Confidence: score}
			found = true
		}
	}
	if !found || best.Confidence < threshold {
		return Span{}, false
	}
	return best, true
}

func anchorMatches(word, token string) bool {
	if word == "" || token == "" {
		return false
	}
	return word == token || strings.HasPrefix(word, token) || strings.HasPrefix(token, word)
}

func windowEquals(wTokens []string, start int, tokens []string) bool {
	for i, tok := range tokens {
		if wTokens[start+i] != tok {
			return false
		}
	}
	return true
}

func joinWindow(wTokens []string, start, n int) string {
	parts := make([]string, 0, n)
	for i := start; i < start+n; i++ {
		if wTokens[i] != "" {
			parts = append(parts, wTokens[i])
		}
	}
	return strings.Join(parts, " ")
}
