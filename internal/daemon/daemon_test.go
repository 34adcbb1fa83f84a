package daemon_test

import (
	"context"
	"testing"
	"time"

	"sublate/internal/daemon"
	"sublate/internal/pipeline"
	"sublate/internal/queue"
	"sublate/internal/scheduler"
	"sublate/internal/testsupport"
)

type noopProcessor struct{}

func (noopProcessor) Process(context.Context, *queue.Job) (*pipeline.Result, error) {
	return &pipeline.Result{Segments: 1}, nil
}

func newDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sched, err := scheduler.New(cfg, store, noopProcessor{}, nil)
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}
	d, err := daemon.New(cfg, store, sched, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestStartStop(t *testing.T) {
	d := newDaemon(t)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.Running() {
		t.Fatal("daemon should report running")
	}
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail")
	}
	done := make(chan struct{})
	go func() {
		d.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return")
	}
	if d.Running() {
		t.Fatal("daemon should report stopped")
	}
}

func TestLockPreventsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	sched, err := scheduler.New(cfg, store, noopProcessor{}, nil)
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}
	first, err := daemon.New(cfg, store, sched, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = first.Close() })
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	secondStore := testsupport.MustOpenStore(t, cfg)
	secondSched, err := scheduler.New(cfg, secondStore, noopProcessor{}, nil)
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}
	second, err := daemon.New(cfg, secondStore, secondSched, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })

	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second daemon must fail to acquire the lock")
	}
}
