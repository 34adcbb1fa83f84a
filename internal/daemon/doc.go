// Package daemon combines the job store and sweep scheduler into a single
// lifecycle with flock-based locking to prevent multiple daemon instances
// from processing the same queue.
package daemon
