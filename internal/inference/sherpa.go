package inference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"

	"sublate/internal/config"
	"sublate/internal/media"
	"sublate/internal/subtitle"
)

const vadWindowSize = 512

// SherpaRecognizer runs offline transducer recognition, splitting the input
// into utterances with Silero VAD so each span carries timestamps.
type SherpaRecognizer struct {
	cfg config.Recognition

	mu         sync.Mutex
	recognizer *sherpa.OfflineRecognizer
}

// NewSherpaRecognizer loads the transducer model described by cfg.
func NewSherpaRecognizer(cfg config.Recognition) (*SherpaRecognizer, error) {
	for name, path := range map[string]string{
		"encoder": cfg.EncoderPath,
		"decoder": cfg.DecoderPath,
		"joiner":  cfg.JoinerPath,
		"tokens":  cfg.TokensPath,
	} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("recognition %s model: %w", name, err)
		}
	}

	sherpaConfig := sherpa.OfflineRecognizerConfig{
		FeatConfig: sherpa.FeatureConfig{
			SampleRate: cfg.SampleRate,
			FeatureDim: 80,
		},
		ModelConfig: sherpa.OfflineModelConfig{
			Transducer: sherpa.OfflineTransducerModelConfig{
				Encoder: cfg.EncoderPath,
				Decoder: cfg.DecoderPath,
				Joiner:  cfg.JoinerPath,
			},
			Tokens:     cfg.TokensPath,
			NumThreads: cfg.NumThreads,
			Debug:      0,
		},
	}
	recognizer := sherpa.NewOfflineRecognizer(&sherpaConfig)
	if recognizer == nil {
		return nil, errors.New("create offline recognizer")
	}
	return &SherpaRecognizer{cfg: cfg, recognizer: recognizer}, nil
}

// Transcribe decodes each VAD utterance through the offline recognizer.
func (r *SherpaRecognizer) Transcribe(ctx context.Context, wave media.Waveform) ([]subtitle.TranscriptSpan, error) {
	utterances, err := detectSpeech(r.cfg, wave)
	if err != nil {
		return nil, err
	}

	var spans []subtitle.TranscriptSpan
	for _, utterance := range utterances {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		startSample := int(utterance.Start * float64(wave.SampleRate))
		endSample := int(utterance.End * float64(wave.SampleRate))
		if endSample > len(wave.Samples) {
			endSample = len(wave.Samples)
		}
		if endSample <= startSample {
			continue
		}
		text, err := r.decode(wave.Samples[startSample:endSample], wave.SampleRate)
		if err != nil {
			return nil, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		spans = append(spans, subtitle.TranscriptSpan{
			Start: utterance.Start,
			End:   utterance.End,
			Text:  text,
		})
	}
	return spans, nil
}

// decode runs one utterance through a fresh offline stream. The underlying
// recognizer is not safe for concurrent decode calls.
func (r *SherpaRecognizer) decode(samples []float32, sampleRate int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stream := sherpa.NewOfflineStream(r.recognizer)
	if stream == nil {
		return "", errors.New("create offline stream")
	}
	defer sherpa.DeleteOfflineStream(stream)

	stream.AcceptWaveform(sampleRate, samples)
	r.recognizer.Decode(stream)
	return stream.GetResult().Text, nil
}

// Close releases the native recognizer.
func (r *SherpaRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recognizer != nil {
		sherpa.DeleteOfflineRecognizer(r.recognizer)
		r.recognizer = nil
	}
	return nil
}

// SileroDetector reports speech intervals using the Silero VAD model.
type SileroDetector struct {
	cfg config.Recognition
}

// NewSileroDetector validates the VAD model path.
func NewSileroDetector(cfg config.Recognition) (*SileroDetector, error) {
	if _, err := os.Stat(cfg.VADModelPath); err != nil {
		return nil, fmt.Errorf("vad model: %w", err)
	}
	return &SileroDetector{cfg: cfg}, nil
}

func (d *SileroDetector) DetectSpeech(ctx context.Context, wave media.Waveform) ([]media.Interval, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return detectSpeech(d.cfg, wave)
}

// detectSpeech feeds the waveform through a fresh Silero VAD instance in
// fixed windows and drains detected segments as they appear.
func detectSpeech(cfg config.Recognition, wave media.Waveform) ([]media.Interval, error) {
	vadConfig := sherpa.VadModelConfig{
		SileroVad: sherpa.SileroVadModelConfig{
			Model:              cfg.VADModelPath,
			Threshold:          0.5,
			MinSilenceDuration: 0.5,
			MinSpeechDuration:  0.25,
			WindowSize:         vadWindowSize,
		},
		SampleRate: wave.SampleRate,
		NumThreads: 1,
		Debug:      0,
	}
	vad := sherpa.NewVoiceActivityDetector(&vadConfig, 60)
	if vad == nil {
		return nil, errors.New("create voice activity detector")
	}
	defer sherpa.DeleteVoiceActivityDetector(vad)

	var intervals []media.Interval
	drain := func() {
		for !vad.IsEmpty() {
			segment := vad.Front()
			vad.Pop()
			start := float64(segment.Start) / float64(wave.SampleRate)
			end := float64(segment.Start+len(segment.Samples)) / float64(wave.SampleRate)
			intervals = append(intervals, media.Interval{Start: start, End: end})
		}
	}

	for offset := 0; offset < len(wave.Samples); offset += vadWindowSize {
		end := offset + vadWindowSize
		if end > len(wave.Samples) {
			end = len(wave.Samples)
		}
		vad.AcceptWaveform(wave.Samples[offset:end])
		drain()
	}
	vad.Flush()
	drain()
	return intervals, nil
}
