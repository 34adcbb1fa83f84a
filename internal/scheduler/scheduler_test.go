package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sublate/internal/pipeline"
	"sublate/internal/queue"
	"sublate/internal/scheduler"
	"sublate/internal/testsupport"
)

type stubProcessor struct {
	mu      sync.Mutex
	block   chan struct{}
	fail    bool
	handled []int64
	active  atomic.Int32
	peak    atomic.Int32
}

func (p *stubProcessor) Process(ctx context.Context, job *queue.Job) (*pipeline.Result, error) {
	current := p.active.Add(1)
	defer p.active.Add(-1)
	for {
		peak := p.peak.Load()
		if current <= peak || p.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	p.handled = append(p.handled, job.ID)
	p.mu.Unlock()

	if p.fail {
		return nil, errors.New("model exploded")
	}
	return &pipeline.Result{
		SubtitlePath:           "/out/a_vi_vi.vtt",
		TranslatedSubtitlePath: "/out/a_vi_en.vtt",
		Segments:               1,
	}, nil
}

func newFixture(t *testing.T, proc scheduler.Processor) (*queue.Store, *scheduler.Scheduler) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sched, err := scheduler.New(cfg, store, proc, nil)
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}
	return store, sched
}

func TestSweepOnceProcessesPendingJobs(t *testing.T) {
	proc := &stubProcessor{}
	store, sched := newFixture(t, proc)
	jobA := testsupport.NewJob(t, store, "a.mp4")
	jobB := testsupport.NewJob(t, store, "b.mp4")

	if !sched.SweepOnce(context.Background()) {
		t.Fatal("SweepOnce reported skip with free slot")
	}

	for _, id := range []int64{jobA.ID, jobB.ID} {
		got, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Status != queue.StatusCompleted {
			t.Fatalf("job %d status = %s, want COMPLETED", id, got.Status)
		}
		if got.SubtitlePath == "" || got.ResultJSON == "" {
			t.Fatalf("job %d missing result fields: %+v", id, got)
		}
	}
	if len(proc.handled) != 2 {
		t.Fatalf("processed %d jobs, want 2", len(proc.handled))
	}
}

func TestSweepMarksFailedJobs(t *testing.T) {
	proc := &stubProcessor{fail: true}
	store, sched := newFixture(t, proc)
	job := testsupport.NewJob(t, store, "broken.mp4")
	sched.SweepOnce(context.Background())

	got, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != queue.StatusFailed {
		t.Fatalf("status = %s, want FAILED", got.Status)
	}
	if got.ErrorMessage == "" {
		t.Fatal("error message not recorded")
	}
}

func TestOverlappingSweepIsSkippedNotQueued(t *testing.T) {
	proc := &stubProcessor{block: make(chan struct{})}
	store, sched := newFixture(t, proc)
	testsupport.NewJob(t, store, "slow.mp4")

	if !sched.Trigger(context.Background()) {
		t.Fatal("first trigger should start a sweep")
	}
	// Wait for the sweep goroutine to claim the slot's work.
	deadline := time.Now().Add(2 * time.Second)
	for proc.active.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweep never started processing")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if sched.Trigger(context.Background()) {
		t.Fatal("second trigger must be skipped while a sweep is in flight")
	}
	if sched.SweepOnce(context.Background()) {
		t.Fatal("SweepOnce must report skip while a sweep is in flight")
	}

	close(proc.block)
	deadline = time.Now().Add(2 * time.Second)
	for {
		proc.mu.Lock()
		done := len(proc.handled) == 1
		proc.mu.Unlock()
		if done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sweep never finished")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Exactly one sweep executed: the job was handled once, not twice.
	if got := proc.peak.Load(); got != 1 {
		t.Fatalf("concurrent sweeps observed: peak = %d", got)
	}
}

func TestRunSweepsOnTicker(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.SweepInterval = 1
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewJob(t, store, "tick.mp4")

	proc := &stubProcessor{}
	sched, err := scheduler.New(cfg, store, proc, nil)
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for {
		proc.mu.Lock()
		handled := len(proc.handled)
		proc.mu.Unlock()
		if handled >= 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("startup sweep never ran")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestClaimedJobIsNotReprocessed(t *testing.T) {
	proc := &stubProcessor{}
	store, sched := newFixture(t, proc)
	job := testsupport.NewJob(t, store, "taken.mp4")
	if claimed, err := store.Claim(context.Background(), job.ID); err != nil || !claimed {
		t.Fatalf("pre-claim failed: %v", err)
	}
	sched.SweepOnce(context.Background())

	if len(proc.handled) != 0 {
		t.Fatalf("processor ran %d times for an already-claimed job", len(proc.handled))
	}
}
