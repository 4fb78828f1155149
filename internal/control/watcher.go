// Package control lets an operator stop a running plan out of band by
// dropping signal files into a watched directory.
package control

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrStopped is returned by Check once a stop signal has been observed.
var ErrStopped = errors.New("control: stop signal received")

// Signal file names. stop halts the plan before its next task; pause holds
// the plan at the task boundary until the file is removed.
const (
	stopSignal  = "stop"
	pauseSignal = "pause"
)

// pausePollInterval is how often Check re-stats the pause file while held.
const pausePollInterval = 200 * time.Millisecond

// Watcher monitors a signals directory for a stop file. It prefers an
// fsnotify watcher and falls back to stat checks when one cannot be
// created, so environments without inotify still work.
type Watcher struct {
	signalsDir string

	mu      sync.RWMutex
	stopped bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher over <dir>/signals, creating the directory
// if needed and starting the fsnotify loop when available.
func NewWatcher(dir string) (*Watcher, error) {
	signalsDir := filepath.Join(dir, "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, fmt.Errorf("create signals directory: %w", err)
	}

	w := &Watcher{
		signalsDir: signalsDir,
		done:       make(chan struct{}),
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		// Polling fallback only; Check stats the file directly.
		return w, nil
	}
	if err := fsw.Add(signalsDir); err != nil {
		fsw.Close()
		return w, nil
	}
	w.watcher = fsw
	go w.watch()

	return w, nil
}

// watch marks the stop flag when the stop file appears.
func (w *Watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == stopSignal &&
				(event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
				w.mu.Lock()
				w.stopped = true
				w.mu.Unlock()
			}
		case <-w.watcher.Errors:
			// Keep watching; Check still has the stat fallback.
		}
	}
}

// Check implements the executor gate. It blocks while a pause file is
// present, then returns ErrStopped when a stop has been signalled, either
// via the watcher or by the stop file existing. Cancelling ctx releases a
// paused Check immediately.
func (w *Watcher) Check(ctx context.Context) error {
	for w.paused() {
		if w.stopRequested() {
			return ErrStopped
		}
		select {
		case <-time.After(pausePollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if w.stopRequested() {
		return ErrStopped
	}
	return nil
}

func (w *Watcher) paused() bool {
	_, err := os.Stat(filepath.Join(w.signalsDir, pauseSignal))
	return err == nil
}

func (w *Watcher) stopRequested() bool {
	w.mu.RLock()
	stopped := w.stopped
	w.mu.RUnlock()
	if stopped {
		return true
	}

	if _, err := os.Stat(filepath.Join(w.signalsDir, stopSignal)); err == nil {
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()
		return true
	}
	return false
}

// Signal drops the stop file, requesting that the current plan halt before
// its next task.
func (w *Watcher) Signal() error {
	return os.WriteFile(filepath.Join(w.signalsDir, stopSignal), []byte{}, 0644)
}

// Pause drops the pause file, holding the current plan at its next task
// boundary until Resume.
func (w *Watcher) Pause() error {
	return os.WriteFile(filepath.Join(w.signalsDir, pauseSignal), []byte{}, 0644)
}

// Resume removes the pause file.
func (w *Watcher) Resume() error {
	err := os.Remove(filepath.Join(w.signalsDir, pauseSignal))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes any pending signal files and resets the stop flag.
func (w *Watcher) Clear() error {
	w.mu.Lock()
	w.stopped = false
	w.mu.Unlock()

	for _, name := range []string{stopSignal, pauseSignal} {
		err := os.Remove(filepath.Join(w.signalsDir, name))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Close stops the watch loop.
func (w *Watcher) Close() error {
	close(w.done)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
