// Package language centralizes language code normalization, display names,
// and text language detection so the pipeline, CLI, and subtitle metadata
// all agree on canonical two-letter codes.
package language
