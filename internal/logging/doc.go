// Package logging assembles structured slog loggers and formatting helpers
// used across sublate components.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes attr helpers so pipeline code tags log lines with job
// IDs, sweep IDs, and segment names in a uniform shape. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
