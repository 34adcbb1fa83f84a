// Package segmentation splits long media into bounded-duration audio
// segments along silence boundaries and records each segment's position in
// the source timeline so downstream stages can reconcile local timestamps
// back to global ones.
package segmentation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"sublate/internal/logging"
	"sublate/internal/media"
	"sublate/internal/services"
)

const (
	// MinSegmentDuration is the smallest span a silence cut may produce.
	MinSegmentDuration = 300.0
	// MaxSegmentDuration bounds every segment; a cut is forced here when no
	// usable silence appears in time.
	MaxSegmentDuration = 600.0
	// MinSilenceGap is the shortest silence considered a cut candidate.
	MinSilenceGap = 0.5

	// MapFileName is the timestamp map persisted next to the segments.
	MapFileName = "map.json"
)

// Segment is one bounded slice of the source media. StartOffset and
// EndOffset are positions in the original timeline.
type Segment struct {
	Path        string
	StartOffset float64
	EndOffset   float64
}

// Duration reports the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.EndOffset - s.StartOffset
}

// TimestampMap records each segment file's span in the source timeline. It
// is persisted as a side file so reconciliation survives a process restart.
type TimestampMap map[string]media.Interval

// Slicer extracts one audio span of the source media to disk.
type Slicer interface {
	SliceAudio(ctx context.Context, source, output string, start, end float64) error
}

// Engine decides cut points and materializes segments.
type Engine struct {
	slicer Slicer
	logger *slog.Logger
}

// NewEngine constructs an Engine around the given slicer.
func NewEngine(slicer Slicer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{slicer: slicer, logger: logger.With(logging.String(logging.FieldComponent, "segmentation"))}
}

// Split cuts the source audio into bounded segments written under outputDir.
// speech holds the detected speech intervals in seconds. When the media fits
// in a single segment no files are written and the map is nil.
func (e *Engine) Split(ctx context.Context, mediaPath, outputDir string, totalDuration float64, speech []media.Interval) ([]Segment, TimestampMap, error) {
	if totalDuration <= 0 {
		return nil, nil, services.Wrap(services.ErrMediaRead, "segmentation", "split", fmt.Sprintf("invalid duration %f", totalDuration), nil)
	}

	if totalDuration <= MaxSegmentDuration {
		e.logger.Debug("media fits in one segment, skipping split",
			logging.Float64("duration_seconds", totalDuration))
		return []Segment{{Path: mediaPath, StartOffset: 0, EndOffset: totalDuration}}, nil, nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, nil, services.Wrap(services.ErrSegmentWrite, "segmentation", "split", "create segment directory", err)
	}

	cuts := cutPoints(totalDuration, silenceGaps(totalDuration, speech))
	e.logger.Info("computed cut points",
		logging.Float64("duration_seconds", totalDuration),
		logging.Int("segments", len(cuts)-1))

	segments := make([]Segment, 0, len(cuts)-1)
	tsMap := make(TimestampMap, len(cuts)-1)
	for i := 0; i < len(cuts)-1; i++ {
		start := cuts[i]
		end := cuts[i+1]
		name := fmt.Sprintf("segment_%03d.wav", i)
		target := filepath.Join(outputDir, name)
		if err := e.slicer.SliceAudio(ctx, mediaPath, target, start, end); err != nil {
			return nil, nil, services.Wrap(services.ErrSegmentWrite, "segmentation", "split",
				fmt.Sprintf("extract segment %d [%f, %f)", i, start, end), err)
		}
		segments = append(segments, Segment{Path: target, StartOffset: start, EndOffset: end})
		tsMap[name] = media.Interval{Start: start, End: end}
		e.logger.Debug("extracted segment",
			logging.Int(logging.FieldSegment, i),
			logging.Float64("start_seconds", start),
			logging.Float64("end_seconds", end))
	}

	if err := WriteMap(filepath.Join(outputDir, MapFileName), tsMap); err != nil {
		return nil, nil, services.Wrap(services.ErrSegmentWrite, "segmentation", "split", "persist timestamp map", err)
	}
	return segments, tsMap, nil
}

// silenceGaps derives cut candidates from the spans between speech
// intervals. The trailing silence up to the end of the media always counts.
func silenceGaps(totalDuration float64, speech []media.Interval) []media.Interval {
	var gaps []media.Interval
	lastEnd := 0.0
	for _, span := range speech {
		if span.Start-lastEnd >= MinSilenceGap {
			gaps = append(gaps, media.Interval{Start: lastEnd, End: span.Start})
		}
		if span.End > lastEnd {
			lastEnd = span.End
		}
	}
	if lastEnd < totalDuration {
		gaps = append(gaps, media.Interval{Start: lastEnd, End: totalDuration})
	}
	return gaps
}

// cutPoints walks silence gaps in order, cutting at the end of a gap once at
// least MinSegmentDuration has elapsed since the previous cut. When the next
// gap would leave a span beyond MaxSegmentDuration, cuts are forced at exact
// MaxSegmentDuration strides so no segment ever exceeds the bound.
func cutPoints(totalDuration float64, gaps []media.Interval) []float64 {
	cuts := []float64{0}
	last := 0.0
	for _, gap := range gaps {
		candidate := gap.End
		if candidate >= totalDuration {
			break
		}
		for candidate-last > MaxSegmentDuration {
			last += MaxSegmentDuration
			cuts = append(cuts, last)
		}
		if candidate-last >= MinSegmentDuration {
			cuts = append(cuts, candidate)
			last = candidate
		}
	}
	for totalDuration-last > MaxSegmentDuration {
		last += MaxSegmentDuration
		cuts = append(cuts, last)
	}
	if last < totalDuration {
		cuts = append(cuts, totalDuration)
	}
	return cuts
}

// WriteMap persists the timestamp map as pretty-printed JSON.
func WriteMap(path string, tsMap TimestampMap) error {
	payload, err := json.MarshalIndent(tsMap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode timestamp map: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write timestamp map: %w", err)
	}
	return nil
}

// ReadMap loads a previously persisted timestamp map.
func ReadMap(path string) (TimestampMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timestamp map: %w", err)
	}
	var tsMap TimestampMap
	if err := json.Unmarshal(data, &tsMap); err != nil {
		return nil, fmt.Errorf("decode timestamp map: %w", err)
	}
	return tsMap, nil
}
