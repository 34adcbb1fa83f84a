package inference

import (
	"context"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"sublate/internal/media"
)

const (
	denoiseFFTSize = 2048
	denoiseHop     = 512
	// Bins whose magnitude falls below noise mean plus this many standard
	// deviations are attenuated.
	denoiseThresholdSigma = 1.5
	// Residual gain applied to gated bins; full suppression sounds hollow.
	denoiseFloorGain = 0.05
	// When the soft pass leaves less than this much signal over residual
	// noise, the gate reruns with the residual gain removed.
	denoiseMinSNRdB = 20.0
)

// SpectralGate is a stationary spectral-gate denoiser. It estimates a
// per-frequency gate from magnitude statistics over the whole input, then
// attenuates every STFT bin below its gate and resynthesizes the waveform
// by overlap-add.
type SpectralGate struct{}

// NewSpectralGate returns a denoiser with fixed analysis parameters matched
// to 16kHz speech.
func NewSpectralGate() *SpectralGate {
	return &SpectralGate{}
}

func (g *SpectralGate) Denoise(ctx context.Context, wave media.Waveform) (media.Waveform, error) {
	if len(wave.Samples) < denoiseFFTSize {
		return wave, nil
	}
	cleaned, err := g.gate(ctx, wave, denoiseFloorGain)
	if err != nil {
		return media.Waveform{}, err
	}
	// Very noisy input can leave the soft pass below an acceptable SNR;
	// rerun with gated bins fully suppressed.
	if residualSNR(wave.Samples, cleaned.Samples) < denoiseMinSNRdB {
		return g.gate(ctx, wave, 0)
	}
	return cleaned, nil
}

func (g *SpectralGate) gate(ctx context.Context, wave media.Waveform, floorGain float64) (media.Waveform, error) {
	if err := ctx.Err(); err != nil {
		return media.Waveform{}, err
	}

	window := hannWindow(denoiseFFTSize)
	fft := fourier.NewFFT(denoiseFFTSize)
	bins := denoiseFFTSize/2 + 1
	frameCount := 1 + (len(wave.Samples)-denoiseFFTSize)/denoiseHop

	// Forward STFT.
	spectra := make([][]complex128, frameCount)
	frame := make([]float64, denoiseFFTSize)
	for i := 0; i < frameCount; i++ {
		offset := i * denoiseHop
		for j := 0; j < denoiseFFTSize; j++ {
			frame[j] = float64(wave.Samples[offset+j]) * window[j]
		}
		spectra[i] = fft.Coefficients(nil, frame)
	}

	// Noise floor per bin from magnitude statistics across all frames.
	thresholds := make([]float64, bins)
	magnitudes := make([]float64, frameCount)
	for bin := 0; bin < bins; bin++ {
		for i := 0; i < frameCount; i++ {
			magnitudes[i] = cmplx.Abs(spectra[i][bin])
		}
		mean, std := stat.MeanStdDev(magnitudes, nil)
		if math.IsNaN(std) {
			std = 0
		}
		thresholds[bin] = mean + denoiseThresholdSigma*std
	}

	// Gate and resynthesize.
	output := make([]float64, len(wave.Samples))
	weight := make([]float64, len(wave.Samples))
	for i := 0; i < frameCount; i++ {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return media.Waveform{}, err
			}
		}
		for bin := 0; bin < bins; bin++ {
			if cmplx.Abs(spectra[i][bin]) < thresholds[bin] {
				spectra[i][bin] *= complex(floorGain, 0)
			}
		}
		restored := fft.Sequence(nil, spectra[i])
		offset := i * denoiseHop
		for j := 0; j < denoiseFFTSize; j++ {
			value := restored[j] / float64(denoiseFFTSize)
			output[offset+j] += value * window[j]
			weight[offset+j] += window[j] * window[j]
		}
	}

	cleaned := make([]float32, len(wave.Samples))
	for i := range cleaned {
		if weight[i] > 1e-9 {
			cleaned[i] = float32(output[i] / weight[i])
		} else {
			cleaned[i] = wave.Samples[i]
		}
	}
	return media.Waveform{Samples: cleaned, SampleRate: wave.SampleRate}, nil
}

// residualSNR estimates signal-to-noise in decibels, treating the gated
// output as signal and whatever the gate removed as noise.
func residualSNR(original, cleaned []float32) float64 {
	var signal, noise float64
	for i := range cleaned {
		s := float64(cleaned[i])
		r := float64(original[i]) - s
		signal += s * s
		noise += r * r
	}
	if noise <= 1e-12 {
		return math.Inf(1)
	}
	if signal <= 1e-12 {
		return math.Inf(-1)
	}
	return 10 * math.Log10(signal/noise)
}

func hannWindow(size int) []float64 {
	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return window
}
