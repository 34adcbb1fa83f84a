package subtitle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format selects the on-disk subtitle track flavor.
type Format string

const (
	FormatVTT Format = "vtt"
	FormatSRT Format = "srt"
)

// ParseFormat resolves a format from user input or a file extension.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(value, "."))) {
	case "vtt", "webvtt":
		return FormatVTT, nil
	case "srt":
		return FormatSRT, nil
	default:
		return "", fmt.Errorf("unknown subtitle format %q", value)
	}
}

// TranscriptSpan is one recognized utterance with timestamps local to the
// waveform it was decoded from.
type TranscriptSpan struct {
	Start float64
	End   float64
	Text  string
}

// Cue is one display unit in the global timeline. Start and End are seconds.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// Duration reports the cue's on-screen time in seconds.
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

// formatTimestamp renders seconds as HH:MM:SS<sep>mmm.
func formatTimestamp(seconds float64, separator byte) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	hours := totalMillis / 3_600_000
	totalMillis %= 3_600_000
	minutes := totalMillis / 60_000
	totalMillis %= 60_000
	secs := totalMillis / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, secs, separator, millis)
}

// parseTimestamp accepts both decimal-point and comma millisecond separators.
func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ",", ".")
	fields := strings.Split(value, ":")
	if len(fields) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(fields[0])
	minutes, errM := strconv.Atoi(fields[1])
	seconds, errS := strconv.ParseFloat(fields[2], 64)
	if errH != nil || errM != nil || errS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60) + seconds, nil
}
