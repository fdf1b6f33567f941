// Package logging builds slog loggers with the repository's console and
// JSON output conventions. The console handler prints a compact
// timestamped line and lifts the "component" attribute into the message
// prefix; the JSON handler emits lowercase level and RFC3339 UTC
// timestamps for log shippers.
package logging
