// Package script defines the narration script records consumed by the
// alignment and matching stages, plus JSON load/save helpers for the
// CLI workflows.
package script
