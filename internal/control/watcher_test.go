package control

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_NoSignal(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}
	defer w.Close()

	if err := w.Check(context.Background()); err != nil {
		t.Errorf("Check with no signal = %v, want nil", err)
	}
}

func TestWatcher_SignalAndCheck(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}
	defer w.Close()

	if err := w.Signal(); err != nil {
		t.Fatalf("Signal returned error: %v", err)
	}
	// Check stats the file directly, so no fsnotify latency matters.
	if err := w.Check(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("Check after Signal = %v, want ErrStopped", err)
	}
}

func TestWatcher_ExternalStopFile(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}
	defer w.Close()

	// A stop file dropped by another process is picked up on Check.
	stopPath := filepath.Join(dir, "signals", "stop")
	if err := os.WriteFile(stopPath, nil, 0644); err != nil {
		t.Fatalf("write stop file: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		if err := w.Check(context.Background()); errors.Is(err, ErrStopped) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("Check never observed the external stop file")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatcher_Clear(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}
	defer w.Close()

	if err := w.Signal(); err != nil {
		t.Fatalf("Signal returned error: %v", err)
	}
	if err := w.Check(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatal("Check should observe the signal before Clear")
	}

	if err := w.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if err := w.Check(context.Background()); err != nil {
		t.Errorf("Check after Clear = %v, want nil", err)
	}
}

func TestWatcher_ClearWithoutSignal(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}
	defer w.Close()

	if err := w.Clear(); err != nil {
		t.Errorf("Clear with no pending signal = %v, want nil", err)
	}
}

func TestWatcher_PauseHoldsCheck(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}
	defer w.Close()

	if err := w.Pause(); err != nil {
		t.Fatalf("Pause returned error: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- w.Check(context.Background())
	}()

	select {
	case err := <-done:
		t.Fatalf("Check returned %v while paused, should block", err)
	case <-time.After(300 * time.Millisecond):
	}

	if err := w.Resume(); err != nil {
		t.Fatalf("Resume returned error: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Check after Resume = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Check did not return after Resume")
	}
}

func TestWatcher_StopWhilePaused(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}
	defer w.Close()

	if err := w.Pause(); err != nil {
		t.Fatalf("Pause returned error: %v", err)
	}
	if err := w.Signal(); err != nil {
		t.Fatalf("Signal returned error: %v", err)
	}

	// A stop wins even while the pause file is in place.
	done := make(chan error, 1)
	go func() {
		done <- w.Check(context.Background())
	}()
	select {
	case err := <-done:
		if !errors.Is(err, ErrStopped) {
			t.Errorf("Check = %v, want ErrStopped", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Check did not return while paused with a stop pending")
	}
}

func TestWatcher_CancelReleasesPausedCheck(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}
	defer w.Close()

	if err := w.Pause(); err != nil {
		t.Fatalf("Pause returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Check(ctx)
	}()

	// An interrupt while paused must release the gate, not leave it spinning.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Check after cancel = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("paused Check did not observe cancellation")
	}
}

func TestWatcher_ClearRemovesPause(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}
	defer w.Close()

	if err := w.Pause(); err != nil {
		t.Fatalf("Pause returned error: %v", err)
	}
	if err := w.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if err := w.Check(context.Background()); err != nil {
		t.Errorf("Check after Clear = %v, want nil", err)
	}
}

func TestWatcher_CreatesSignalsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}
	defer w.Close()

	if _, err := os.Stat(filepath.Join(dir, "signals")); err != nil {
		t.Errorf("signals directory not created: %v", err)
	}
}
