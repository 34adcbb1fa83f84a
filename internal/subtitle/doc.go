// Package subtitle builds normalized cue timelines from recognized speech
// spans and serializes them as WebVTT or SRT tracks. The builder guarantees
// cues are sorted by start time and never overlap, regardless of the order
// spans arrive in.
package subtitle
