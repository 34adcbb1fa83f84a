package subtitle_test

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"sublate/internal/subtitle"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuildAppliesOffsets(t *testing.T) {
	spans := []subtitle.TranscriptSpan{
		{Start: 10, End: 13, Text: "hello there"},
	}
	cues := subtitle.Build(spans, 600)
	if len(cues) != 1 {
		t.Fatalf("got %d cues, want 1", len(cues))
	}
	if !approx(cues[0].Start, 610.5) {
		t.Fatalf("start = %f, want 610.5", cues[0].Start)
	}
	if !approx(cues[0].End, 614.0) {
		t.Fatalf("end = %f, want 614.0", cues[0].End)
	}
}

func TestBuildClampsDuration(t *testing.T) {
	spans := []subtitle.TranscriptSpan{
		{Start: 0, End: 0.2, Text: "hi"},
		{Start: 20, End: 40, Text: "a very long monologue"},
	}
	cues := subtitle.Build(spans, 0)
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}
	if got := cues[0].Duration(); !approx(got, 1.5) {
		t.Fatalf("short cue duration = %f, want 1.5", got)
	}
	if got := cues[1].Duration(); !approx(got, 6.0) {
		t.Fatalf("long cue duration = %f, want 6.0", got)
	}
}

func TestBuildExtendsToMinimumDuration(t *testing.T) {
	// With a negative-length raw span the offsets alone leave the cue under
	// the 1.5s floor, so the builder must extend it.
	cues := subtitle.Build([]subtitle.TranscriptSpan{
		{Start: 5.0, End: 4.8, Text: "blip"},
	}, 0)
	if len(cues) != 1 {
		t.Fatalf("got %d cues, want 1", len(cues))
	}
	if got := cues[0].Duration(); !approx(got, 1.5) {
		t.Fatalf("duration = %f, want 1.5", got)
	}
}

func TestBuildResolvesOverlap(t *testing.T) {
	spans := []subtitle.TranscriptSpan{
		{Start: 0, End: 5, Text: "first"},
		{Start: 4, End: 9, Text: "second"},
	}
	cues := subtitle.Build(spans, 0)
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}
	if !approx(cues[0].End, cues[1].Start-0.1) {
		t.Fatalf("first end = %f, want %f", cues[0].End, cues[1].Start-0.1)
	}
}

func TestBuildDropsEmptyAndDegenerate(t *testing.T) {
	spans := []subtitle.TranscriptSpan{
		{Start: 0, End: 3, Text: "   "},
		{Start: 10, End: 12, Text: "kept"},
	}
	cues := subtitle.Build(spans, 0)
	if len(cues) != 1 || !strings.Contains(cues[0].Text, "kept") {
		t.Fatalf("unexpected cues: %+v", cues)
	}
}

func TestBuildWrapsText(t *testing.T) {
	text := "this is a fairly long sentence that certainly will not fit on one line"
	cues := subtitle.Build([]subtitle.TranscriptSpan{{Start: 0, End: 4, Text: text}}, 0)
	if len(cues) != 1 {
		t.Fatalf("got %d cues, want 1", len(cues))
	}
	for _, line := range strings.Split(cues[0].Text, "\n") {
		if len(line) > 40 {
			t.Fatalf("line %q exceeds 40 columns", line)
		}
	}
	joined := strings.ReplaceAll(cues[0].Text, "\n", " ")
	if joined != text {
		t.Fatalf("wrap altered words: %q", joined)
	}
}

func TestBuildOutputMonotonicNonOverlapping(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	spans := make([]subtitle.TranscriptSpan, 50)
	for i := range spans {
		start := rng.Float64() * 500
		spans[i] = subtitle.TranscriptSpan{
			Start: start,
			End:   start + rng.Float64()*10,
			Text:  "utterance",
		}
	}
	cues := subtitle.Build(spans, 0)
	for i := 1; i < len(cues); i++ {
		if cues[i].Start < cues[i-1].Start {
			t.Fatalf("cues not sorted at %d", i)
		}
		if cues[i-1].End > cues[i].Start {
			t.Fatalf("cues overlap at %d: %f > %f", i, cues[i-1].End, cues[i].Start)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	spans := []subtitle.TranscriptSpan{
		{Start: 0, End: 0.5, Text: "one"},
		{Start: 1, End: 20, Text: "two"},
		{Start: 3, End: 4, Text: "three"},
	}
	once := subtitle.Build(spans, 0)
	twice := subtitle.Normalize(once, 0)
	if len(once) != len(twice) {
		t.Fatalf("cue count changed: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if !approx(once[i].Start, twice[i].Start) || !approx(once[i].End, twice[i].End) {
			t.Fatalf("cue %d changed: %+v -> %+v", i, once[i], twice[i])
		}
	}
}

func TestNormalizeShiftsByOffset(t *testing.T) {
	cues := []subtitle.Cue{
		{Start: 1, End: 4, Text: "shifted"},
	}
	shifted := subtitle.Normalize(cues, 300)
	if len(shifted) != 1 || !approx(shifted[0].Start, 301) || !approx(shifted[0].End, 304) {
		t.Fatalf("unexpected shift result: %+v", shifted)
	}
}
