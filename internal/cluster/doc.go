// Package cluster groups chronologically sorted footage segments into
// story-moment clusters.
//
// The grouping rule combines a hard time-gap cutoff with, in priority
// order, people overlap, location similarity and story-context keyword
// overlap. An optional LLM pass can split clusters at narrative
// boundaries; that pass only ever narrows clusters and degrades to a
// no-op on any collaborator failure.
package cluster
