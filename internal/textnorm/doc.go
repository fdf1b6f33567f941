// Package textnorm canonicalizes text for fuzzy comparison.
//
// Normalization strips diacritics, folds case, maps typographic
// punctuation to ASCII, replaces remaining punctuation with spaces and
// collapses whitespace. The result is stable under repeated
// normalization, which the alignment and clustering packages rely on.
package textnorm
