// Package library persists analyzed footage (segments and scene
// clusters) in SQLite and serves keyword retrieval over it. The store
// is the default Searcher implementation used by the matcher when no
// external search service is configured.
package library
