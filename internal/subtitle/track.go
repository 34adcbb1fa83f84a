package subtitle

import (
	"fmt"
	"os"
	"strings"
)

// Serialize renders cues as a complete subtitle track in the given format.
func Serialize(cues []Cue, format Format) (string, error) {
	switch format {
	case FormatVTT:
		return serializeVTT(cues), nil
	case FormatSRT:
		return serializeSRT(cues), nil
	default:
		return "", fmt.Errorf("unknown subtitle format %q", format)
	}
}

// WriteTrack serializes cues and writes them to path.
func WriteTrack(path string, cues []Cue, format Format) error {
	text, err := Serialize(cues, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write subtitle track: %w", err)
	}
	return nil
}

// ReadTrack parses a subtitle file, accepting both formats.
func ReadTrack(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subtitle track: %w", err)
	}
	return Parse(string(data))
}

func serializeVTT(cues []Cue) string {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")
	for _, cue := range cues {
		fmt.Fprintf(&sb, "%s --> %s\n%s\n\n",
			formatTimestamp(cue.Start, '.'),
			formatTimestamp(cue.End, '.'),
			cue.Text)
	}
	return sb.String()
}

func serializeSRT(cues []Cue) string {
	var sb strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n",
			i+1,
			formatTimestamp(cue.Start, ','),
			formatTimestamp(cue.End, ','),
			cue.Text)
	}
	return sb.String()
}

// Parse decodes VTT or SRT content into cues. Numeric index lines and the
// WEBVTT header are skipped; malformed blocks are dropped rather than
// failing the whole track.
func Parse(content string) ([]Cue, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimPrefix(content, "\uFEFF")

	var cues []Cue
	blocks := strings.Split(content, "\n\n")
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		cueIdx := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				cueIdx = i
				break
			}
		}
		if cueIdx < 0 {
			continue
		}
		parts := strings.SplitN(lines[cueIdx], "-->", 2)
		endFields := strings.Fields(strings.TrimSpace(parts[1]))
		if len(endFields) == 0 {
			continue
		}
		start, errStart := parseTimestamp(parts[0])
		end, errEnd := parseTimestamp(endFields[0])
		if errStart != nil || errEnd != nil {
			continue
		}
		text := strings.TrimSpace(strings.Join(lines[cueIdx+1:], "\n"))
		if text == "" {
			continue
		}
		cues = append(cues, Cue{Start: start, End: end, Text: text})
	}
	return cues, nil
}
