package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

// Interval is a time span in seconds within a waveform or media timeline.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Length reports the interval length in seconds.
func (i Interval) Length() float64 {
	return i.End - i.Start
}

// Waveform holds mono PCM samples normalized to [-1, 1].
type Waveform struct {
	Samples    []float32
	SampleRate int
}

// Duration reports the waveform length in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// ReadWAV decodes a PCM16 mono WAV file into normalized samples.
func ReadWAV(path string) (Waveform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Waveform{}, fmt.Errorf("read wav: %w", err)
	}
	return decodeWAV(data)
}

// WriteWAV encodes normalized samples as a PCM16 mono WAV file.
func WriteWAV(path string, wave Waveform) error {
	if wave.SampleRate <= 0 {
		return errors.New("write wav: sample rate must be positive")
	}
	payload := encodeWAV(wave)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

func decodeWAV(data []byte) (Waveform, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Waveform{}, errors.New("decode wav: not a RIFF/WAVE file")
	}

	var (
		sampleRate    int
		bitsPerSample int
		channels      int
		pcm           []byte
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}
		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return Waveform{}, errors.New("decode wav: short fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return Waveform{}, fmt.Errorf("decode wav: unsupported format %d, want PCM", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+chunkSize]
		}
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if sampleRate == 0 || pcm == nil {
		return Waveform{}, errors.New("decode wav: missing fmt or data chunk")
	}
	if bitsPerSample != 16 {
		return Waveform{}, fmt.Errorf("decode wav: unsupported bit depth %d, want 16", bitsPerSample)
	}
	if channels != 1 {
		return Waveform{}, fmt.Errorf("decode wav: unsupported channel count %d, want mono", channels)
	}

	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		samples[i] = float32(sample) / 32768
	}
	return Waveform{Samples: samples, SampleRate: sampleRate}, nil
}

func encodeWAV(wave Waveform) []byte {
	dataSize := len(wave.Samples) * 2
	buf := make([]byte, 44+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], 1)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(wave.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(wave.SampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)
	binary.LittleEndian.PutUint16(buf[34:36], 16)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	for i, sample := range wave.Samples {
		clamped := math.Max(-1, math.Min(1, float64(sample)))
		value := int16(math.Round(clamped * 32767))
		binary.LittleEndian.PutUint16(buf[44+i*2:46+i*2], uint16(value))
	}
	return buf
}
