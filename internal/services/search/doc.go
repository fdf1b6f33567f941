// Package search talks to an external semantic search service over
// HTTP. It satisfies the matcher's Searcher interface so deployments
// with an embedding index can swap out the built-in keyword search.
package search
