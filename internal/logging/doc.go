// Package logging assembles structured slog loggers for playlistopt.
//
// It owns the console and JSON handlers, maps configured levels, and exposes
// context-aware helpers so pipeline stages tag log lines with the run ID,
// stage name, and target user. Logs are written to stderr (plus an optional
// file) so stdout stays reserved for command output. A no-op logger is
// available for tests and wiring code that cannot fail.
package logging
