package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	s := newSpinner("Rendering 12 nodes")
	s.Start()
	time.Sleep(2 * spinnerInterval)
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Exporting 5 nodes to dagopt")
	s.Start()
	s.Stop()
	// A second Stop must not panic on the closed channels.
	s.Stop()
}

func TestSpinnerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Rendering 500 nodes")
	s.Start()
	cancel()

	// Give the animation goroutine time to notice.
	time.Sleep(2 * spinnerInterval)

	if !s.Cancelled() {
		t.Error("Cancelled() = false after context cancellation")
	}
	s.Stop()
}

func TestSpinnerTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), spinnerInterval/2)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Exporting graph")
	s.Start()
	time.Sleep(2 * spinnerInterval)

	if !s.Cancelled() {
		t.Error("Cancelled() = false after context deadline")
	}
	s.Stop()
}

func TestSpinnerNotCancelledWhileRunning(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Optimizing")
	s.Start()
	if s.Cancelled() {
		t.Error("Cancelled() = true while running")
	}
	s.Stop()
}
