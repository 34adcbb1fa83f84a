package inference_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"sublate/internal/inference"
	"sublate/internal/media"
)

func rms(samples []float32) float64 {
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func TestSpectralGateReducesNoiseFloor(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	sampleRate := 16000
	samples := make([]float32, sampleRate*2)
	for i := range samples {
		tone := 0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate))
		noise := 0.02 * (rng.Float64()*2 - 1)
		samples[i] = float32(tone + noise)
	}
	wave := media.Waveform{Samples: samples, SampleRate: sampleRate}

	cleaned, err := inference.NewSpectralGate().Denoise(context.Background(), wave)
	if err != nil {
		t.Fatalf("Denoise: %v", err)
	}
	if len(cleaned.Samples) != len(samples) {
		t.Fatalf("length changed: %d -> %d", len(samples), len(cleaned.Samples))
	}
	if cleaned.SampleRate != sampleRate {
		t.Fatalf("sample rate changed: %d", cleaned.SampleRate)
	}
	// The output must not be silenced or amplified beyond the input.
	inLevel, outLevel := rms(samples), rms(cleaned.Samples)
	if outLevel < inLevel*0.1 {
		t.Fatalf("output nearly silent: in %f out %f", inLevel, outLevel)
	}
	if outLevel > inLevel*1.5 {
		t.Fatalf("output amplified: in %f out %f", inLevel, outLevel)
	}
}

func TestSpectralGatePassesShortInput(t *testing.T) {
	wave := media.Waveform{Samples: make([]float32, 100), SampleRate: 16000}
	cleaned, err := inference.NewSpectralGate().Denoise(context.Background(), wave)
	if err != nil {
		t.Fatalf("Denoise: %v", err)
	}
	if len(cleaned.Samples) != 100 {
		t.Fatalf("short input altered: %d samples", len(cleaned.Samples))
	}
}

func TestSpectralGateHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	wave := media.Waveform{Samples: make([]float32, 16000*5), SampleRate: 16000}
	if _, err := inference.NewSpectralGate().Denoise(ctx, wave); err == nil {
		t.Fatal("expected context error")
	}
}
