package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"sublate/internal/logging"
	"sublate/internal/media"
	"sublate/internal/queue"
	"sublate/internal/segmentation"
	"sublate/internal/services"
	"sublate/internal/subtitle"
)

// segmentResult holds one segment's cues, already shifted into the global
// timeline. Results are stored in per-segment slots so completion order can
// never overwrite another segment's output.
type segmentResult struct {
	originCues     []subtitle.Cue
	translatedCues []subtitle.Cue
}

// processSegments fans segments out across a bounded worker pool and
// collects every result into its own slot. The first error cancels the
// remaining work.
func (o *Orchestrator) processSegments(ctx context.Context, logger *slog.Logger, job *queue.Job, segments []segmentation.Segment) ([]segmentResult, error) {
	workers := o.cfg.Workflow.SegmentWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(segments) {
		workers = len(segments)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]segmentResult, len(segments))
	sem := make(chan struct{}, workers)
	errOnce := sync.Once{}
	var firstErr error
	var wg sync.WaitGroup

	for i := range segments {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			if firstErr != nil {
				return nil, firstErr
			}
			return nil, ctx.Err()
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := o.processSegment(ctx, logger, job, idx, segments[idx])
			if err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			results[idx] = res
		}(i)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// processSegment runs denoise, recognition, optional correction, and
// optional translation for one segment. Every produced cue is shifted by the
// segment's global start offset before it leaves this function.
func (o *Orchestrator) processSegment(ctx context.Context, logger *slog.Logger, job *queue.Job, idx int, segment segmentation.Segment) (segmentResult, error) {
	segLogger := logger.With(logging.Int(logging.FieldSegment, idx))

	wave, err := media.ReadWAV(segment.Path)
	if err != nil {
		return segmentResult{}, services.Wrap(services.ErrMediaRead, "pipeline", "segment",
			fmt.Sprintf("decode segment %d audio", idx), err)
	}
	cleaned, err := o.collab.Denoiser.Denoise(ctx, wave)
	if err != nil {
		return segmentResult{}, services.Wrap(services.ErrProcessing, "pipeline", "segment",
			fmt.Sprintf("denoise segment %d", idx), err)
	}

	spans, err := o.collab.Transcriber.Transcribe(ctx, cleaned)
	if err != nil {
		return segmentResult{}, services.Wrap(services.ErrProcessing, "pipeline", "segment",
			fmt.Sprintf("transcribe segment %d", idx), err)
	}
	segLogger.Debug("segment transcribed",
		logging.Int("spans", len(spans)),
		logging.Float64("offset_seconds", segment.StartOffset))

	if job.UseCorrection {
		for i := range spans {
			corrected, err := o.collab.Corrector.Correct(ctx, spans[i].Text, job.OriginLanguage)
			if err != nil {
				return segmentResult{}, services.Wrap(services.ErrProcessing, "pipeline", "segment",
					fmt.Sprintf("correct segment %d span %d", idx, i), err)
			}
			spans[i].Text = corrected
		}
	}

	var translated []subtitle.TranscriptSpan
	if job.TranslateLanguage != job.OriginLanguage {
		translated = make([]subtitle.TranscriptSpan, len(spans))
		for i, span := range spans {
			text, err := o.collab.Translator.Translate(ctx, span.Text, job.OriginLanguage, job.TranslateLanguage)
			if err != nil {
				return segmentResult{}, services.Wrap(services.ErrProcessing, "pipeline", "segment",
					fmt.Sprintf("translate segment %d span %d", idx, i), err)
			}
			translated[i] = subtitle.TranscriptSpan{Start: span.Start, End: span.End, Text: text}
		}
	} else {
		translated = spans
	}

	return segmentResult{
		originCues:     subtitle.Build(spans, segment.StartOffset),
		translatedCues: subtitle.Build(translated, segment.StartOffset),
	}, nil
}
