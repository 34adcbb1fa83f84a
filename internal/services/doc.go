// Package services defines the shared error taxonomy for pipeline stages.
//
// Sentinel errors classify failures (media read, segment write, artifact
// polling, timeout, embedding, generic processing) so the scheduler can map
// any stage failure to a terminal queue status. Wrap attaches stage and
// operation context while preserving the sentinel for errors.Is checks.
package services
