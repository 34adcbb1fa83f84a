package media_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sublate/internal/media"
)

const probeJSON = `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264"},
    {"index": 1, "codec_type": "audio", "codec_name": "aac", "channels": 2}
  ],
  "format": {"format_name": "mov,mp4", "duration": "754.321"}
}`

func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

// stub ffmpeg that writes a byte into whatever path follows -y.
const ffmpegStub = `out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-y" ]; then out="$arg"; fi
  prev="$arg"
done
if [ -n "$out" ]; then printf 'x' > "$out"; fi
exit 0`

func TestInspectParsesProbeOutput(t *testing.T) {
	dir := t.TempDir()
	ffprobe := writeStub(t, dir, "ffprobe", "cat <<'EOF'\n"+probeJSON+"\nEOF")

	result, err := media.Inspect(context.Background(), ffprobe, "movie.mp4")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !result.HasVideo() {
		t.Fatal("expected video stream")
	}
	if got := result.AudioStreamCount(); got != 1 {
		t.Fatalf("AudioStreamCount = %d, want 1", got)
	}
	if got := result.DurationSeconds(); math.Abs(got-754.321) > 1e-9 {
		t.Fatalf("DurationSeconds = %f, want 754.321", got)
	}
}

func TestInspectSurfacesStderr(t *testing.T) {
	dir := t.TempDir()
	ffprobe := writeStub(t, dir, "ffprobe", "echo 'no such file' >&2\nexit 1")

	_, err := media.Inspect(context.Background(), ffprobe, "missing.mp4")
	if err == nil {
		t.Fatal("expected error for failing probe")
	}
	if !strings.Contains(err.Error(), "no such file") {
		t.Fatalf("error missing stderr detail: %v", err)
	}
}

func TestExtractAudioRejectsEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := writeStub(t, dir, "ffmpeg", `out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-y" ]; then out="$arg"; fi
  prev="$arg"
done
if [ -n "$out" ]; then : > "$out"; fi
exit 0`)
	tool := media.NewTool(ffmpeg, "ffprobe")

	err := tool.ExtractAudio(context.Background(), "in.mp4", filepath.Join(dir, "out.wav"))
	if err == nil {
		t.Fatal("expected error for empty output file")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSliceAudioValidatesSpan(t *testing.T) {
	tool := media.NewTool("ffmpeg", "ffprobe")
	err := tool.SliceAudio(context.Background(), "in.wav", "out.wav", 30, 30)
	if err == nil {
		t.Fatal("expected error for zero-length span")
	}
}

func TestEmbedSoftRequiresInputs(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := writeStub(t, dir, "ffmpeg", ffmpegStub)
	tool := media.NewTool(ffmpeg, "ffprobe")

	err := tool.EmbedSoft(context.Background(), filepath.Join(dir, "missing.mp4"), filepath.Join(dir, "subs.srt"), filepath.Join(dir, "out.mp4"), "en")
	if err == nil {
		t.Fatal("expected error for missing video input")
	}
}

func TestEmbedSoftProducesOutput(t *testing.T) {
	dir := t.TempDir()
	ffmpeg := writeStub(t, dir, "ffmpeg", ffmpegStub)
	tool := media.NewTool(ffmpeg, "ffprobe")

	video := filepath.Join(dir, "movie.mp4")
	subs := filepath.Join(dir, "movie.srt")
	for _, path := range []string{video, subs} {
		if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	output := filepath.Join(dir, "out", "movie.mp4")
	if err := tool.EmbedSoft(context.Background(), video, subs, output, "en"); err != nil {
		t.Fatalf("EmbedSoft: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}

func TestConcatenateWritesPlaylist(t *testing.T) {
	dir := t.TempDir()
	playlistCopy := filepath.Join(dir, "seen_playlist.txt")
	ffmpeg := writeStub(t, dir, "ffmpeg", `out=""
prev=""
playlist=""
for arg in "$@"; do
  if [ "$prev" = "-y" ]; then out="$arg"; fi
  if [ "$prev" = "-i" ]; then playlist="$arg"; fi
  prev="$arg"
done
cp "$playlist" "`+playlistCopy+`"
if [ -n "$out" ]; then printf 'x' > "$out"; fi
exit 0`)
	tool := media.NewTool(ffmpeg, "ffprobe")

	parts := []string{filepath.Join(dir, "part_000.mp4"), filepath.Join(dir, "part_001.mp4")}
	output := filepath.Join(dir, "joined.mp4")
	if err := tool.Concatenate(context.Background(), parts, output); err != nil {
		t.Fatalf("Concatenate: %v", err)
	}

	seen, err := os.ReadFile(playlistCopy)
	if err != nil {
		t.Fatalf("read captured playlist: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(seen)), "\n")
	if len(lines) != 2 {
		t.Fatalf("playlist has %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "part_000.mp4") || !strings.Contains(lines[1], "part_001.mp4") {
		t.Fatalf("playlist order wrong: %q", lines)
	}
	if _, err := os.Stat(filepath.Join(dir, "playlist.txt")); !os.IsNotExist(err) {
		t.Fatal("playlist file should be removed after success")
	}
}

func TestWAVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")

	samples := make([]float32, 1600)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 16000))
	}
	wave := media.Waveform{Samples: samples, SampleRate: 16000}
	if err := media.WriteWAV(path, wave); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	decoded, err := media.ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if decoded.SampleRate != 16000 {
		t.Fatalf("sample rate = %d, want 16000", decoded.SampleRate)
	}
	if len(decoded.Samples) != len(samples) {
		t.Fatalf("sample count = %d, want %d", len(decoded.Samples), len(samples))
	}
	for i := range samples {
		if math.Abs(float64(decoded.Samples[i]-samples[i])) > 1.0/16384 {
			t.Fatalf("sample %d drifted: got %f want %f", i, decoded.Samples[i], samples[i])
		}
	}
	if got := decoded.Duration(); math.Abs(got-0.1) > 1e-9 {
		t.Fatalf("Duration = %f, want 0.1", got)
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.wav")
	if err := os.WriteFile(path, []byte("not a wav at all"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := media.ReadWAV(path); err == nil {
		t.Fatal("expected decode error")
	}
}
