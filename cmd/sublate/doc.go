// Package main hosts the sublate CLI entrypoint and command graph.
//
// The Cobra-based command tree covers queue management, one-off job
// submission, synchronous processing runs, and configuration scaffolding.
// Commands operate directly on the SQLite job store; the long-running
// daemon (sublated) picks up queued work on its own sweep cadence.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
