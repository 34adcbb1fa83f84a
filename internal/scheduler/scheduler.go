// Package scheduler runs periodic sweeps over the pending job queue. Sweeps
// are single-flight: a tick or manual trigger that arrives while a sweep is
// still running is skipped, never queued.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"sublate/internal/config"
	"sublate/internal/logging"
	"sublate/internal/pipeline"
	"sublate/internal/queue"
)

// Processor executes one claimed job. *pipeline.Orchestrator satisfies it.
type Processor interface {
	Process(ctx context.Context, job *queue.Job) (*pipeline.Result, error)
}

// Scheduler owns the sweep loop and the single-flight slot.
type Scheduler struct {
	cfg       *config.Config
	store     *queue.Store
	processor Processor
	logger    *slog.Logger

	// slot is a non-blocking semaphore of capacity one. Holding the token
	// means a sweep is in flight.
	slot chan struct{}

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
}

// New constructs a Scheduler.
func New(cfg *config.Config, store *queue.Store, processor Processor, logger *slog.Logger) (*Scheduler, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if store == nil {
		return nil, errors.New("store is required")
	}
	if processor == nil {
		return nil, errors.New("processor is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		cfg:       cfg,
		store:     store,
		processor: processor,
		logger:    logger.With(logging.String(logging.FieldComponent, "scheduler")),
		slot:      make(chan struct{}, 1),
		stopped:   make(chan struct{}),
	}, nil
}

// Run sweeps immediately and then on every tick until the context is
// canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.Workflow.SweepInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", logging.Duration("sweep_interval", interval))
	s.Trigger(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.stopOnce.Do(func() { close(s.stopped) })
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Trigger(ctx)
		}
	}
}

// Trigger attempts to start a sweep. It returns true when the sweep was
// started and false when one was already in flight.
func (s *Scheduler) Trigger(ctx context.Context) bool {
	select {
	case s.slot <- struct{}{}:
	default:
		s.logger.Info("sweep already in flight, skipping")
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { <-s.slot }()
		s.sweep(ctx)
	}()
	return true
}

// SweepOnce runs a sweep synchronously. Used by the CLI's run-once command.
func (s *Scheduler) SweepOnce(ctx context.Context) bool {
	select {
	case s.slot <- struct{}{}:
	default:
		return false
	}
	defer func() { <-s.slot }()
	s.sweep(ctx)
	return true
}

func (s *Scheduler) sweep(ctx context.Context) {
	sweepID := uuid.NewString()
	logger := s.logger.With(logging.String(logging.FieldSweepID, sweepID))

	jobs, err := s.store.Pending(ctx)
	if err != nil {
		logger.Error("list pending jobs", logging.Error(err))
		return
	}
	if len(jobs) == 0 {
		logger.Debug("no pending jobs")
		return
	}
	logger.Info("sweep started", logging.Int("pending", len(jobs)))

	for _, job := range jobs {
		if ctx.Err() != nil {
			logger.Info("sweep interrupted", logging.Error(ctx.Err()))
			return
		}
		s.runJob(ctx, logger, job)
	}
	logger.Info("sweep finished")
}

// runJob claims, processes, and finalizes one job. A failed claim means
// another process took the job and is not an error.
func (s *Scheduler) runJob(ctx context.Context, logger *slog.Logger, job *queue.Job) {
	claimed, err := s.store.Claim(ctx, job.ID)
	if err != nil {
		logger.Error("claim job", logging.Int64(logging.FieldJobID, job.ID), logging.Error(err))
		return
	}
	if !claimed {
		logger.Debug("job already claimed", logging.Int64(logging.FieldJobID, job.ID))
		return
	}

	jobLogger := logger.With(logging.Int64(logging.FieldJobID, job.ID))
	result, err := s.processor.Process(ctx, job)
	if err != nil {
		jobLogger.Error("job failed", logging.Error(err))
		if markErr := s.store.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			jobLogger.Error("record job failure", logging.Error(markErr))
		}
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		jobLogger.Error("encode job result", logging.Error(err))
		payload = []byte("{}")
	}
	if err := s.store.MarkCompleted(ctx, job.ID, result.TranslatedSubtitlePath, string(payload)); err != nil {
		jobLogger.Error("record job completion", logging.Error(err))
		return
	}
	jobLogger.Info("job completed",
		logging.String("subtitle", result.TranslatedSubtitlePath))
}
