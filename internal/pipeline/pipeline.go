// Package pipeline drives one subtitle job end to end: audio normalization,
// segmentation, concurrent per-segment recognition and translation,
// timeline reconciliation, optional scoring, and optional subtitle
// embedding. All timestamps leaving a segment are expressed in the global
// timeline before results are merged.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sublate/internal/config"
	"sublate/internal/inference"
	"sublate/internal/language"
	"sublate/internal/logging"
	"sublate/internal/media"
	"sublate/internal/queue"
	"sublate/internal/scoring"
	"sublate/internal/segmentation"
	"sublate/internal/services"
	"sublate/internal/subtitle"
	"sublate/internal/textutil"
)

const (
	// languageProbeSeconds bounds the audio sampled for origin-language
	// detection when a job does not name one.
	languageProbeSeconds = 60

	defaultOriginLanguage = "en"
)

// MediaTool is the subprocess surface the orchestrator needs from ffmpeg and
// ffprobe. *media.Tool satisfies it.
type MediaTool interface {
	Inspect(ctx context.Context, path string) (media.ProbeResult, error)
	ExtractAudio(ctx context.Context, source, output string) error
	SliceAudio(ctx context.Context, source, output string, start, end float64) error
	SliceVideo(ctx context.Context, source, output string, start, end float64) error
	EmbedSoft(ctx context.Context, video, subtitle, output, language string) error
	EmbedHard(ctx context.Context, video, subtitle, output string) error
	Concatenate(ctx context.Context, parts []string, output string) error
	Validate(ctx context.Context, path string) error
}

// Collaborators are the external inference engines the orchestrator fans
// work out to. They are injected at construction.
type Collaborators struct {
	Transcriber inference.Transcriber
	Detector    inference.SpeechDetector
	Denoiser    inference.Denoiser
	Translator  inference.Translator
	Corrector   inference.Corrector
}

func (c Collaborators) validate() error {
	switch {
	case c.Transcriber == nil:
		return errors.New("transcriber is required")
	case c.Detector == nil:
		return errors.New("speech detector is required")
	case c.Denoiser == nil:
		return errors.New("denoiser is required")
	case c.Translator == nil:
		return errors.New("translator is required")
	case c.Corrector == nil:
		return errors.New("corrector is required")
	}
	return nil
}

// Result is the aggregate outcome of one job.
type Result struct {
	SubtitlePath           string             `json:"subtitle_path"`
	TranslatedSubtitlePath string             `json:"translated_subtitle_path"`
	EmbeddedVideoPath      string             `json:"embedded_video_path,omitempty"`
	WER                    *float64           `json:"wer,omitempty"`
	BLEU                   *float64           `json:"bleu,omitempty"`
	Segments               int                `json:"segments"`
	StageSeconds           map[string]float64 `json:"stage_seconds"`
}

// Orchestrator executes jobs against a fixed set of collaborators.
type Orchestrator struct {
	cfg       *config.Config
	tool      MediaTool
	collab    Collaborators
	segmenter *segmentation.Engine
	logger    *slog.Logger
}

// New builds an Orchestrator. The segmentation engine is derived from the
// supplied media tool.
func New(cfg *config.Config, tool MediaTool, collab Collaborators, logger *slog.Logger) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if tool == nil {
		return nil, errors.New("media tool is required")
	}
	if err := collab.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String(logging.FieldComponent, "pipeline"))
	return &Orchestrator{
		cfg:       cfg,
		tool:      tool,
		collab:    collab,
		segmenter: segmentation.NewEngine(tool, logger),
		logger:    logger,
	}, nil
}

// Process runs one job to completion under the configured hard timeout.
func (o *Orchestrator) Process(ctx context.Context, job *queue.Job) (*Result, error) {
	if job == nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "process", "job is nil", nil)
	}
	timeout := time.Duration(o.cfg.Workflow.JobTimeout) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := o.run(ctx, job)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "pipeline", "process",
				fmt.Sprintf("job exceeded %s", timeout), err)
		}
		return nil, err
	}
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, job *queue.Job) (*Result, error) {
	timings := newStopwatch()

	logger := o.logger.With(logging.Int64(logging.FieldJobID, job.ID))
	inputPath := filepath.Join(o.cfg.Paths.InputDir, job.FileName)
	baseName := textutil.SanitizeFileName(strings.TrimSuffix(job.FileName, filepath.Ext(job.FileName)))
	workDir := filepath.Join(o.cfg.Paths.WorkDir, fmt.Sprintf("job-%d", job.ID))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrProcessing, "pipeline", "prepare", "create work directory", err)
	}

	logger.Info("job started",
		logging.String("file", job.FileName),
		logging.String("origin", job.OriginLanguage),
		logging.String("target", job.TranslateLanguage),
		logging.String("embed", string(job.EmbedSubtitle)))

	// Inspect the container and normalize audio.
	timings.start("normalize")
	probe, err := o.tool.Inspect(ctx, inputPath)
	if err != nil {
		return nil, services.Wrap(services.ErrMediaRead, "pipeline", "inspect", "probe input media", err)
	}
	isVideo := probe.HasVideo()
	duration := probe.DurationSeconds()

	normalizedAudio := filepath.Join(workDir, baseName+"_normalized.wav")
	if err := o.tool.ExtractAudio(ctx, inputPath, normalizedAudio); err != nil {
		return nil, services.Wrap(services.ErrMediaRead, "pipeline", "extract", "normalize audio track", err)
	}
	wave, err := media.ReadWAV(normalizedAudio)
	if err != nil {
		return nil, services.Wrap(services.ErrMediaRead, "pipeline", "extract", "decode normalized audio", err)
	}
	if duration <= 0 {
		duration = wave.Duration()
	}
	timings.stop("normalize")

	// One whole-file denoise + VAD pass decides where cuts may land.
	timings.start("vad")
	cleaned, err := o.collab.Denoiser.Denoise(ctx, wave)
	if err != nil {
		return nil, services.Wrap(services.ErrProcessing, "pipeline", "denoise", "denoise full waveform", err)
	}
	speech, err := o.collab.Detector.DetectSpeech(ctx, cleaned)
	if err != nil {
		return nil, services.Wrap(services.ErrProcessing, "pipeline", "vad", "detect speech intervals", err)
	}
	logger.Info("speech detection finished",
		logging.Float64("duration_seconds", duration),
		logging.Int("speech_intervals", len(speech)))
	timings.stop("vad")

	// Jobs may omit the spoken language; sample the opening audio and detect
	// it from a quick transcript.
	if job.OriginLanguage == "" {
		timings.start("language")
		job.OriginLanguage = o.detectOriginLanguage(ctx, logger, cleaned)
		timings.stop("language")
	}

	// Segmentation.
	timings.start("segmentation")
	segments, _, err := o.segmenter.Split(ctx, normalizedAudio, filepath.Join(workDir, "segments"), duration, speech)
	if err != nil {
		return nil, err
	}
	timings.stop("segmentation")

	// Concurrent per-segment recognition, correction, and translation.
	timings.start("segments")
	segmentResults, err := o.processSegments(ctx, logger, job, segments)
	if err != nil {
		return nil, err
	}
	timings.stop("segments")

	// Reconcile per-segment cues into single global tracks.
	timings.start("reconcile")
	var originCues, translatedCues []subtitle.Cue
	for _, sr := range segmentResults {
		originCues = append(originCues, sr.originCues...)
		translatedCues = append(translatedCues, sr.translatedCues...)
	}
	originCues = subtitle.Normalize(originCues, 0)
	translatedCues = subtitle.Normalize(translatedCues, 0)

	if err := os.MkdirAll(o.cfg.Paths.OutputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrProcessing, "pipeline", "reconcile", "create output directory", err)
	}
	originToken := textutil.SanitizeToken(job.OriginLanguage)
	targetToken := textutil.SanitizeToken(job.TranslateLanguage)
	originTrack := filepath.Join(o.cfg.Paths.OutputDir,
		fmt.Sprintf("%s_%s_%s.vtt", baseName, originToken, originToken))
	if err := subtitle.WriteTrack(originTrack, originCues, subtitle.FormatVTT); err != nil {
		return nil, services.Wrap(services.ErrProcessing, "pipeline", "reconcile", "write origin track", err)
	}
	translatedTrack := originTrack
	if job.TranslateLanguage != job.OriginLanguage || job.UseCorrection {
		translatedTrack = filepath.Join(o.cfg.Paths.OutputDir,
			fmt.Sprintf("%s_%s_%s.vtt", baseName, originToken, targetToken))
		if err := subtitle.WriteTrack(translatedTrack, translatedCues, subtitle.FormatVTT); err != nil {
			return nil, services.Wrap(services.ErrProcessing, "pipeline", "reconcile", "write translated track", err)
		}
	}
	timings.stop("reconcile")

	result := &Result{
		SubtitlePath:           originTrack,
		TranslatedSubtitlePath: translatedTrack,
		Segments:               len(segments),
	}

	// Optional scoring against reference tracks dropped next to the input.
	timings.start("scoring")
	o.scoreAgainstReferences(logger, job, result, originTrack, translatedTrack)
	timings.stop("scoring")

	// Optional embedding.
	if job.EmbedSubtitle != queue.EmbedNone {
		if !isVideo {
			logger.Warn("embedding requested for non-video input, skipping")
		} else {
			timings.start("embed")
			embedded, err := o.embed(ctx, logger, job, inputPath, baseName, workDir, segments, translatedCues)
			if err != nil {
				return nil, err
			}
			result.EmbeddedVideoPath = embedded
			timings.stop("embed")
		}
	}

	timings.stop("total")
	result.StageSeconds = timings.seconds()
	logger.Info("job finished",
		logging.Int("segments", len(segments)),
		logging.String("subtitle", result.SubtitlePath),
		logging.String("translated", result.TranslatedSubtitlePath),
		logging.Any("stage_seconds", result.StageSeconds))
	return result, nil
}

// detectOriginLanguage transcribes up to the first minute of audio and runs
// text-based language detection on the result. Falls back to English when the
// probe is inconclusive.
func (o *Orchestrator) detectOriginLanguage(ctx context.Context, logger *slog.Logger, wave media.Waveform) string {
	sample := wave
	if limit := languageProbeSeconds * sample.SampleRate; len(sample.Samples) > limit {
		sample.Samples = sample.Samples[:limit]
	}

	spans, err := o.collab.Transcriber.Transcribe(ctx, sample)
	if err != nil {
		logger.Warn("language probe transcription failed", logging.Error(err))
		return defaultOriginLanguage
	}
	parts := make([]string, 0, len(spans))
	for _, span := range spans {
		parts = append(parts, span.Text)
	}

	code, ok := language.Detect(strings.Join(parts, " "))
	if !ok {
		logger.Warn("language detection inconclusive, assuming english")
		return defaultOriginLanguage
	}
	logger.Info("detected origin language", logging.String("language", code))
	return code
}

// scoreAgainstReferences computes WER and BLEU when reference tracks named
// <base>_ref_<lang>.vtt exist in the input directory. Missing references are
// not an error.
func (o *Orchestrator) scoreAgainstReferences(logger *slog.Logger, job *queue.Job, result *Result, originTrack, translatedTrack string) {
	base := strings.TrimSuffix(job.FileName, filepath.Ext(job.FileName))

	originRef := filepath.Join(o.cfg.Paths.InputDir, fmt.Sprintf("%s_ref_%s.vtt", base, job.OriginLanguage))
	if _, err := os.Stat(originRef); err == nil {
		if metrics, err := scoring.Evaluate(originRef, originTrack); err == nil {
			result.WER = &metrics.WER
			logger.Info("scored origin track", logging.Float64("wer", metrics.WER))
		} else {
			logger.Warn("origin scoring failed", logging.Error(err))
		}
	}

	if job.TranslateLanguage == job.OriginLanguage {
		return
	}
	translatedRef := filepath.Join(o.cfg.Paths.InputDir, fmt.Sprintf("%s_ref_%s.vtt", base, job.TranslateLanguage))
	if _, err := os.Stat(translatedRef); err == nil {
		if metrics, err := scoring.Evaluate(translatedRef, translatedTrack); err == nil {
			result.BLEU = &metrics.BLEU
			logger.Info("scored translated track", logging.Float64("bleu", metrics.BLEU))
		} else {
			logger.Warn("translation scoring failed", logging.Error(err))
		}
	}
}
