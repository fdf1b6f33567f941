package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold maps typographic dashes and quotes to their ASCII
// equivalents before punctuation stripping, so curly and straight
// variants normalize identically.
var asciiFold = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"‚", "'", // single low quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"„", `"`, // double low quote
	"«", `"`, // left guillemet
	"»", `"`, // right guillemet
	"…", "...", // ellipsis
)

// Normalize canonicalizes text for comparison: decomposes and strips
// combining marks, lowercases, folds typographic punctuation to ASCII,
// replaces remaining punctuation with spaces, collapses whitespace and
// trims. It is pure and idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	folded := asciiFold.Replace(text)
	stripped, _, err := transform.String(marksStripper(), folded)
	if err != nil {
		// Malformed UTF-8 falls back to the unstripped form; the
		// rune walk below still sanitizes it.
		stripped = folded
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens normalizes text and splits it into whitespace-separated tokens.
func Tokens(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

func marksStripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
