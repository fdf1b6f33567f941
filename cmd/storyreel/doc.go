// Package main hosts the storyreel CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the full narration-to-footage
// workflow: aligning script scenes to the narration transcript,
// importing and clustering indexed footage, matching scenes to library
// clips, and configuration scaffolding. It centralizes configuration
// resolution and structured logging setup so subcommands can focus on
// user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the
// internal packages first, then surface it through dedicated commands
// or flags here.
package main
