package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Tool wraps the ffmpeg/ffprobe binaries used for audio extraction, segment
// slicing, subtitle embedding, and lossless concatenation.
type Tool struct {
	ffmpeg  string
	ffprobe string
}

// NewTool constructs a Tool. Empty binary names fall back to PATH lookup of
// the standard names.
func NewTool(ffmpeg, ffprobe string) *Tool {
	if strings.TrimSpace(ffmpeg) == "" {
		ffmpeg = "ffmpeg"
	}
	if strings.TrimSpace(ffprobe) == "" {
		ffprobe = "ffprobe"
	}
	return &Tool{ffmpeg: ffmpeg, ffprobe: ffprobe}
}

// Inspect probes the container at path.
func (t *Tool) Inspect(ctx context.Context, path string) (ProbeResult, error) {
	return Inspect(ctx, t.ffprobe, path)
}

// ExtractAudio decodes the source's audio track into a mono 16kHz PCM16 WAV.
func (t *Tool) ExtractAudio(ctx context.Context, source, output string) error {
	if err := ensureParent(output); err != nil {
		return err
	}
	args := []string{
		"-i", source,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y", output,
	}
	if err := t.run(ctx, args); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	return requireNonEmpty(output)
}

// SliceAudio extracts the [start, end) span of the source audio into a mono
// 16kHz PCM16 WAV. Offsets are seconds in the source timeline.
func (t *Tool) SliceAudio(ctx context.Context, source, output string, start, end float64) error {
	if end <= start {
		return fmt.Errorf("slice audio: invalid span [%f, %f)", start, end)
	}
	if err := ensureParent(output); err != nil {
		return err
	}
	args := []string{
		"-ss", formatSeconds(start),
		"-to", formatSeconds(end),
		"-i", source,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y", output,
	}
	if err := t.run(ctx, args); err != nil {
		return fmt.Errorf("slice audio: %w", err)
	}
	return requireNonEmpty(output)
}

// SliceVideo extracts the [start, end) span of the source container without
// re-encoding. Used to build per-segment videos for embedding.
func (t *Tool) SliceVideo(ctx context.Context, source, output string, start, end float64) error {
	if end <= start {
		return fmt.Errorf("slice video: invalid span [%f, %f)", start, end)
	}
	if err := ensureParent(output); err != nil {
		return err
	}
	args := []string{
		"-ss", formatSeconds(start),
		"-to", formatSeconds(end),
		"-i", source,
		"-c", "copy",
		"-y", output,
	}
	if err := t.run(ctx, args); err != nil {
		return fmt.Errorf("slice video: %w", err)
	}
	return requireNonEmpty(output)
}

// EmbedSoft muxes the subtitle file into the container as a mov_text stream.
func (t *Tool) EmbedSoft(ctx context.Context, video, subtitle, output, language string) error {
	if err := checkEmbedInputs(video, subtitle); err != nil {
		return err
	}
	if err := ensureParent(output); err != nil {
		return err
	}
	if strings.TrimSpace(language) == "" {
		language = "und"
	}
	args := []string{
		"-i", video,
		"-i", subtitle,
		"-c:v", "copy",
		"-c:a", "copy",
		"-c:s", "mov_text",
		"-metadata:s:s:0", "language=" + language,
		"-y", output,
	}
	if err := t.run(ctx, args); err != nil {
		return fmt.Errorf("embed soft: %w", err)
	}
	return requireNonEmpty(output)
}

// EmbedHard burns the subtitle file into the video frames using the ffmpeg
// subtitles filter with a fixed readable style.
func (t *Tool) EmbedHard(ctx context.Context, video, subtitle, output string) error {
	if err := checkEmbedInputs(video, subtitle); err != nil {
		return err
	}
	if err := ensureParent(output); err != nil {
		return err
	}
	escaped := strings.ReplaceAll(subtitle, "'", `'\''`)
	filter := fmt.Sprintf("subtitles='%s':force_style='Fontsize=24,PrimaryColour=&HFFFFFF&,FontName=DejaVu Sans'", escaped)
	args := []string{
		"-i", video,
		"-vf", filter,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-y", output,
	}
	if err := t.run(ctx, args); err != nil {
		return fmt.Errorf("embed hard: %w", err)
	}
	return requireNonEmpty(output)
}

// Concatenate joins the given video parts losslessly in order using the
// concat demuxer. The playlist file is written next to the output and
// removed on success.
func (t *Tool) Concatenate(ctx context.Context, parts []string, output string) error {
	if len(parts) == 0 {
		return errors.New("concatenate: no parts provided")
	}
	if err := ensureParent(output); err != nil {
		return err
	}

	playlist := filepath.Join(filepath.Dir(output), "playlist.txt")
	var sb strings.Builder
	for _, part := range parts {
		abs, err := filepath.Abs(part)
		if err != nil {
			return fmt.Errorf("concatenate: resolve %s: %w", part, err)
		}
		fmt.Fprintf(&sb, "file '%s'\n", abs)
	}
	if err := os.WriteFile(playlist, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("concatenate: write playlist: %w", err)
	}

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", playlist,
		"-c", "copy",
		"-y", output,
	}
	if err := t.run(ctx, args); err != nil {
		return fmt.Errorf("concatenate: %w", err)
	}
	if err := requireNonEmpty(output); err != nil {
		return err
	}
	_ = os.Remove(playlist)
	return nil
}

// Validate checks container integrity by asking ffprobe to walk every stream.
func (t *Tool) Validate(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, t.ffprobe, "-v", "error", "-show_streams", "-show_format", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("validate container: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (t *Tool) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, t.ffmpeg, append([]string{"-hide_banner", "-loglevel", "error"}, args...)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", t.ffmpeg, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func checkEmbedInputs(video, subtitle string) error {
	if _, err := os.Stat(video); err != nil {
		return fmt.Errorf("video file: %w", err)
	}
	if _, err := os.Stat(subtitle); err != nil {
		return fmt.Errorf("subtitle file: %w", err)
	}
	return nil
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure output directory: %w", err)
	}
	return nil
}

func requireNonEmpty(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("output file: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("output file %s is empty", path)
	}
	return nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}
