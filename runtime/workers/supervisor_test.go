package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// panicOnceWorker panics on its first run, then blocks until cancellation.
type panicOnceWorker struct {
	runs      atomic.Int32
	restarted chan struct{}
}

func (w *panicOnceWorker) Run(ctx context.Context) error {
	if w.runs.Add(1) == 1 {
		panic("boom")
	}
	close(w.restarted)
	<-ctx.Done()
	return ctx.Err()
}

// finishingWorker returns nil immediately and must never be restarted.
type finishingWorker struct {
	runs atomic.Int32
	done chan struct{}
}

func (w *finishingWorker) Run(_ context.Context) error {
	if w.runs.Add(1) == 1 {
		close(w.done)
	}
	return nil
}

// failingWorker returns an error every run.
type failingWorker struct {
	runs atomic.Int32
}

func (w *failingWorker) Run(_ context.Context) error {
	w.runs.Add(1)
	return fmt.Errorf("transient failure")
}

func TestSupervisor_Restarts_Worker_After_Panic(t *testing.T) {
	req := require.New(t)
	worker := &panicOnceWorker{restarted: make(chan struct{})}
	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	// Then the panic is recovered and the worker runs again
	select {
	case <-worker.restarted:
	case <-time.After(2 * time.Second):
		t.Fatal("worker was not restarted after panic")
	}
	req.GreaterOrEqual(worker.runs.Load(), int32(2))
}

func TestSupervisor_Does_Not_Restart_Finished_Worker(t *testing.T) {
	req := require.New(t)
	worker := &finishingWorker{done: make(chan struct{})}
	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	select {
	case <-worker.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never ran")
	}

	// A finished worker stays finished
	time.Sleep(50 * time.Millisecond)
	req.Equal(int32(1), worker.runs.Load())
}

func TestSupervisor_Restarts_Worker_After_Error(t *testing.T) {
	req := require.New(t)
	worker := &failingWorker{}
	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	req.Eventually(func() bool {
		return worker.runs.Load() >= 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSupervisor_Stop_Unblocks_Run(t *testing.T) {
	req := require.New(t)
	worker := &failingWorker{}
	sup := NewSupervisor(slog.Default(), time.Hour)
	sup.Add(worker)

	finished := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(finished)
	}()

	// Wait for at least one run, then stop during the restart delay
	req.Eventually(func() bool {
		return worker.runs.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
	sup.Stop()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestSupervisor_Parent_Cancellation_Stops_Workers(t *testing.T) {
	worker := &failingWorker{}
	sup := NewSupervisor(slog.Default(), time.Hour)
	sup.Add(worker)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(finished)
	}()

	require.Eventually(t, func() bool {
		return worker.runs.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after parent cancellation")
	}
}
