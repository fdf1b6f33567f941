// Package match turns a narration scene into a footage clip decision.
//
// For each scene it builds a search query, retrieves and ranks clip
// candidates, and either auto-selects on an unambiguous similarity
// signal or asks the generative-text collaborator to arbitrate. The
// chosen candidate is tailored to an exact sub-clip window for the
// scene's target duration. Selections are memoized by a content hash of
// the scene and candidate set, and batch matching runs under a bounded
// worker pool.
package match
