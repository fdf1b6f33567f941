// Package align locates narration excerpts inside a word-level ASR
// transcript and maps each scene of a script onto a time range in the
// narration audio.
//
// Search runs a three-tier cascade (exact window, prefix expansion,
// fuzzy walk) because spoken narration rarely token-matches ASR output
// exactly. Sequence alignment keeps a monotonically advancing floor so
// later scenes can never match earlier audio.
package align
