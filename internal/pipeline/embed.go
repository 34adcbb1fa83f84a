package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sublate/internal/logging"
	"sublate/internal/queue"
	"sublate/internal/segmentation"
	"sublate/internal/services"
	"sublate/internal/subtitle"
)

// embed produces the subtitled video artifact. Single-segment jobs embed the
// whole source; multi-segment jobs embed each segment's video slice with its
// locally shifted cues and concatenate the pieces in order.
func (o *Orchestrator) embed(ctx context.Context, logger *slog.Logger, job *queue.Job, inputPath, baseName, workDir string, segments []segmentation.Segment, cues []subtitle.Cue) (string, error) {
	finalPath := filepath.Join(o.cfg.Paths.OutputDir, baseName+"_subtitled.mp4")

	if len(segments) <= 1 {
		if err := o.embedOne(ctx, job, inputPath, cues, nil, finalPath, workDir, 0); err != nil {
			return "", err
		}
	} else {
		parts := make([]string, len(segments))
		for i, segment := range segments {
			segVideo := filepath.Join(workDir, fmt.Sprintf("%s_part_%03d.mp4", baseName, i))
			if err := o.tool.SliceVideo(ctx, inputPath, segVideo, segment.StartOffset, segment.EndOffset); err != nil {
				return "", services.Wrap(services.ErrEmbedding, "pipeline", "embed",
					fmt.Sprintf("slice video for segment %d", i), err)
			}
			local := localCues(cues, segment)
			partPath := filepath.Join(workDir, fmt.Sprintf("%s_part_%03d_subtitled.mp4", baseName, i))
			if err := o.embedOne(ctx, job, segVideo, local, &segment, partPath, workDir, i); err != nil {
				return "", err
			}
			parts[i] = partPath
		}
		if err := o.tool.Concatenate(ctx, parts, finalPath); err != nil {
			return "", services.Wrap(services.ErrEmbedding, "pipeline", "embed", "concatenate embedded segments", err)
		}
	}

	if err := o.waitForArtifact(ctx, finalPath); err != nil {
		return "", err
	}
	if err := o.tool.Validate(ctx, finalPath); err != nil {
		return "", services.Wrap(services.ErrEmbedding, "pipeline", "embed", "validate embedded video", err)
	}
	logger.Info("embedded subtitle into video",
		logging.String("path", finalPath),
		logging.String("mode", string(job.EmbedSubtitle)))
	return finalPath, nil
}

// embedOne writes the cue track for one video and runs the requested embed
// mode. Hard embedding burns from an SRT since the subtitles filter handles
// it most reliably; soft embedding muxes the same cues as a track.
func (o *Orchestrator) embedOne(ctx context.Context, job *queue.Job, videoPath string, cues []subtitle.Cue, segment *segmentation.Segment, outputPath, workDir string, idx int) error {
	format := subtitle.FormatVTT
	if job.EmbedSubtitle == queue.EmbedHard {
		format = subtitle.FormatSRT
	}
	trackPath := filepath.Join(workDir, fmt.Sprintf("embed_%03d.%s", idx, format))
	if err := subtitle.WriteTrack(trackPath, cues, format); err != nil {
		return services.Wrap(services.ErrEmbedding, "pipeline", "embed", "write embed track", err)
	}

	var err error
	switch job.EmbedSubtitle {
	case queue.EmbedSoft:
		err = o.tool.EmbedSoft(ctx, videoPath, trackPath, outputPath, job.TranslateLanguage)
	case queue.EmbedHard:
		err = o.tool.EmbedHard(ctx, videoPath, trackPath, outputPath)
	default:
		return services.Wrap(services.ErrValidation, "pipeline", "embed",
			fmt.Sprintf("unknown embed mode %q", job.EmbedSubtitle), nil)
	}
	if err != nil {
		return services.Wrap(services.ErrEmbedding, "pipeline", "embed", "run ffmpeg embed", err)
	}
	return nil
}

// localCues selects the cues that fall inside a segment and shifts them back
// into the segment's local clock so burned-in timestamps line up.
func localCues(cues []subtitle.Cue, segment segmentation.Segment) []subtitle.Cue {
	var local []subtitle.Cue
	for _, cue := range cues {
		if cue.End <= segment.StartOffset || cue.Start >= segment.EndOffset {
			continue
		}
		start := cue.Start - segment.StartOffset
		end := cue.End - segment.StartOffset
		if start < 0 {
			start = 0
		}
		if limit := segment.Duration(); end > limit {
			end = limit
		}
		local = append(local, subtitle.Cue{Start: start, End: end, Text: cue.Text})
	}
	return local
}

// waitForArtifact polls for the embedded artifact to exist and be non-empty
// within the configured retry budget.
func (o *Orchestrator) waitForArtifact(ctx context.Context, path string) error {
	attempts := o.cfg.Embedding.PollAttempts
	if attempts < 1 {
		attempts = 1
	}
	interval := time.Duration(o.cfg.Embedding.PollInterval) * time.Second

	for attempt := 1; attempt <= attempts; attempt++ {
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return services.Wrap(services.ErrArtifactNotReady, "pipeline", "embed",
		fmt.Sprintf("artifact %s missing or empty after %d attempts", path, attempts), nil)
}
