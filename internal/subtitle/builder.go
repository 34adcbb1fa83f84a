package subtitle

import (
	"sort"
	"strings"
)

const (
	// Appear delay keeps cues from flashing in ahead of the audio.
	appearOffset = 0.5
	// Linger keeps short utterances readable after the speaker stops.
	lingerOffset = 1.0

	minCueDuration = 1.5
	maxCueDuration = 6.0

	// Gap left between a trimmed cue and its successor.
	overlapMargin = 0.1

	wrapColumns = 40
)

// Build converts recognized spans into a normalized cue timeline. The global
// offset shifts every span from its segment-local clock into the source
// timeline. Output cues are sorted by start time and never overlap.
func Build(spans []TranscriptSpan, globalOffset float64) []Cue {
	cues := make([]Cue, 0, len(spans))
	for _, span := range spans {
		text := strings.TrimSpace(span.Text)
		if text == "" {
			continue
		}
		cues = append(cues, Cue{
			Start: span.Start + appearOffset + globalOffset,
			End:   span.End + lingerOffset + globalOffset,
			Text:  wrapText(text, wrapColumns),
		})
	}
	return normalizeTimeline(cues)
}

// Normalize re-applies timing rules to cues parsed back from disk, shifting
// them by globalOffset. Used when per-segment tracks are merged into one
// timeline. Normalizing an already-normalized timeline with a zero offset is
// a no-op.
func Normalize(cues []Cue, globalOffset float64) []Cue {
	shifted := make([]Cue, 0, len(cues))
	for _, cue := range cues {
		if strings.TrimSpace(cue.Text) == "" {
			continue
		}
		shifted = append(shifted, Cue{
			Start: cue.Start + globalOffset,
			End:   cue.End + globalOffset,
			Text:  cue.Text,
		})
	}
	return normalizeTimeline(shifted)
}

// normalizeTimeline sorts, clamps durations, and resolves overlaps. Overlap
// trimming runs after clamping, so re-running the pass reproduces the same
// trimmed ends and the pass stays idempotent.
func normalizeTimeline(cues []Cue) []Cue {
	sort.SliceStable(cues, func(i, j int) bool {
		return cues[i].Start < cues[j].Start
	})

	result := make([]Cue, 0, len(cues))
	for i := range cues {
		cue := cues[i]
		duration := cue.End - cue.Start
		if duration < minCueDuration {
			cue.End = cue.Start + minCueDuration
		} else if duration > maxCueDuration {
			cue.End = cue.Start + maxCueDuration
		}
		if i+1 < len(cues) {
			nextStart := cues[i+1].Start
			if cue.End > nextStart-overlapMargin {
				cue.End = nextStart - overlapMargin
			}
		}
		if cue.End <= cue.Start {
			continue
		}
		result = append(result, cue)
	}
	return result
}

// wrapText breaks text into lines of at most width columns, splitting on
// spaces. Words longer than the width occupy their own line.
func wrapText(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= width {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	lines = append(lines, current)
	return strings.Join(lines, "\n")
}
