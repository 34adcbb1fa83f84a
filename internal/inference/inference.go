// Package inference defines the external model collaborators the pipeline
// depends on and their concrete adapters: sherpa-onnx for recognition and
// voice activity detection, an OpenAI-compatible endpoint for translation
// and text correction, and a local spectral-gate denoiser.
package inference

import (
	"context"

	"sublate/internal/media"
	"sublate/internal/subtitle"
)

// Transcriber converts a waveform into timed text spans. Span timestamps are
// local to the supplied waveform.
type Transcriber interface {
	Transcribe(ctx context.Context, wave media.Waveform) ([]subtitle.TranscriptSpan, error)
}

// SpeechDetector finds speech intervals in a waveform.
type SpeechDetector interface {
	DetectSpeech(ctx context.Context, wave media.Waveform) ([]media.Interval, error)
}

// Denoiser returns a cleaned copy of the waveform.
type Denoiser interface {
	Denoise(ctx context.Context, wave media.Waveform) (media.Waveform, error)
}

// Translator renders text from one language into another.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Corrector fixes recognition mistakes in text without changing its meaning.
type Corrector interface {
	Correct(ctx context.Context, text, lang string) (string, error)
}
