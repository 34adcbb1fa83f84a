// Package daemonrun wires the full processing runtime: queue store,
// inference collaborators, pipeline orchestrator, scheduler, and daemon
// lifecycle. Both the sublated binary and the CLI's foreground daemon mode
// run through here so the wiring stays in one place.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"

	"sublate/internal/config"
	"sublate/internal/daemon"
	"sublate/internal/deps"
	"sublate/internal/inference"
	"sublate/internal/logging"
	"sublate/internal/media"
	"sublate/internal/pipeline"
	"sublate/internal/queue"
	"sublate/internal/scheduler"
)

// Collaborators builds the inference engines the pipeline depends on. The
// returned cleanup releases native recognizer resources and must be called
// once processing is finished.
func Collaborators(cfg *config.Config) (pipeline.Collaborators, func(), error) {
	recognizer, err := inference.NewSherpaRecognizer(cfg.Recognition)
	if err != nil {
		return pipeline.Collaborators{}, nil, fmt.Errorf("speech recognizer: %w", err)
	}

	detector, err := inference.NewSileroDetector(cfg.Recognition)
	if err != nil {
		recognizer.Close()
		return pipeline.Collaborators{}, nil, fmt.Errorf("voice activity detector: %w", err)
	}

	textService, err := inference.NewTextService(cfg.Translation)
	if err != nil {
		recognizer.Close()
		return pipeline.Collaborators{}, nil, fmt.Errorf("text service: %w", err)
	}

	collab := pipeline.Collaborators{
		Transcriber: recognizer,
		Detector:    detector,
		Denoiser:    inference.NewSpectralGate(),
		Translator:  textService,
		Corrector:   textService,
	}
	cleanup := func() {
		_ = recognizer.Close()
	}
	return collab, cleanup, nil
}

// NewOrchestrator assembles a pipeline orchestrator with production
// collaborators. The cleanup must be called after the orchestrator is done.
func NewOrchestrator(cfg *config.Config, logger *slog.Logger) (*pipeline.Orchestrator, func(), error) {
	collab, cleanup, err := Collaborators(cfg)
	if err != nil {
		return nil, nil, err
	}

	tool := media.NewTool(cfg.FFmpegBinary(), cfg.FFprobeBinary())
	orchestrator, err := pipeline.New(cfg, tool, collab, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return orchestrator, cleanup, nil
}

// Run starts the daemon runtime and blocks until the context is canceled.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	for _, status := range deps.Missing(deps.Check(deps.ForConfig(cfg))) {
		logger.Warn("missing dependency",
			logging.String("name", status.Name),
			logging.String("detail", status.Detail))
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open queue store: %w", err)
	}

	orchestrator, cleanup, err := NewOrchestrator(cfg, logger)
	if err != nil {
		store.Close()
		return err
	}
	defer cleanup()

	sched, err := scheduler.New(cfg, store, orchestrator, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("create scheduler: %w", err)
	}

	d, err := daemon.New(cfg, store, sched, logger)
	if err != nil {
		store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	logger.Info("daemon started", logging.String("queue", store.Path()))

	<-ctx.Done()
	logger.Info("daemon shutting down")
	return nil
}
