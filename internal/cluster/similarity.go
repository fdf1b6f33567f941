package cluster

import (
	"strings"

	"storyreel/internal/textnorm"
)

// rolePrefixes are generic descriptors the vision indexer prepends to
// person labels ("male cyclist", "the vendor"). They are stripped so the
// same person labeled slightly differently still overlaps.
var rolePrefixes = []string{"male ", "female ", "man ", "woman ", "the "}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "of": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "with": {}, "by": {}, "from": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "being": {},
	"it": {}, "its": {}, "this": {}, "that": {}, "some": {}, "near": {},
}

func normalizePersonName(name string) string {
	normalized := textnorm.Normalize(name)
	for changed := true; changed; {
		changed = false
		for _, prefix := range rolePrefixes {
			if strings.HasPrefix(normalized, prefix) {
				normalized = strings.TrimSpace(strings.TrimPrefix(normalized, prefix))
				changed = true
			}
		}
	}
	return normalized
}

func peopleOverlap(a, b []string) float64 {
	setA := personSet(a)
	setB := personSet(b)
	return jaccard(setA, setB)
}

func personSet(names []string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, name := range names {
		if n := normalizePersonName(name); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// locationsSimilar matches exact normalized strings, substring
// containment in either direction, or at least half the significant
// words shared after stopword removal.
func locationsSimilar(a, b string) bool {
	na := textnorm.Normalize(a)
	nb := textnorm.Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	sa := significantWords(na)
	sb := significantWords(nb)
	if len(sa) == 0 || len(sb) == 0 {
		return false
	}
	shared := 0
	for w := range sa {
		if _, ok := sb[w]; ok {
			shared++
		}
	}
	smaller := len(sa)
	if len(sb) < smaller {
		smaller = len(sb)
	}
	return float64(shared)/float64(smaller) >= locationMinSharedRatio
}

func storyContextsSimilar(a, b string) bool {
	sa := significantWords(textnorm.Normalize(a))
	sb := significantWords(textnorm.Normalize(b))
	if len(sa) == 0 || len(sb) == 0 {
		return false
	}
	return jaccard(sa, sb) >= storyContextMinJaccard
}

func significantWords(normalized string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(normalized) {
		if _, stop := stopwords[w]; stop {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
