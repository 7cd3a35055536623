// Package watch re-runs a callback when files change in a set of
// directories. Events are coalesced over a debounce window and the callback
// runs on the event-loop goroutine, so runs never overlap.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesainslie/scconfig/pkg/scconfig/logging"
)

// DefaultDebounce is the coalescing window used when New is given zero.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned when adding to a closed watcher.
var ErrClosed = errors.New("watcher closed")

// Func is invoked with the sorted set of paths that changed.
type Func func(ctx context.Context, changed []string)

// Watcher watches directories (non-recursively) for config changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *logging.Logger

	mu     sync.Mutex
	paths  map[string]bool
	closed bool
}

// New creates a Watcher with the given debounce window.
func New(debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	return &Watcher{
		fsw:      fsw,
		debounce: debounce,
		logger:   logging.Get("watch"),
		paths:    make(map[string]bool),
	}, nil
}

// Add starts watching dir.
func (w *Watcher) Add(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", abs, os.ErrInvalid)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.paths[abs] {
		return nil
	}
	if err := w.fsw.Add(abs); err != nil {
		return fmt.Errorf("watching %s: %w", abs, err)
	}
	w.paths[abs] = true
	w.logger.Debug("watching directory", "path", abs)
	return nil
}

// Paths returns the watched directories, sorted.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.paths))
	for p := range w.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Relevant reports whether op can change which config files are live.
// Chmod-only events are ignored.
func Relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write) ||
		op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}

// Run blocks until ctx is done or the watcher is closed. After a burst of
// relevant events settles for the debounce window, fn is called with the
// changed paths. Events arriving within one debounce window after fn
// returns are dropped, so renames made by fn itself do not retrigger it.
func (w *Watcher) Run(ctx context.Context, fn Func) error {
	var (
		timer      *time.Timer
		timerC     <-chan time.Time
		pending    = make(map[string]bool)
		quietUntil time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !Relevant(event.Op) || time.Now().Before(quietUntil) {
				continue
			}
			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-timerC:
			timerC = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)

			w.logger.Info("changes detected", "paths", len(changed))
			fn(ctx, changed)
			quietUntil = time.Now().Add(w.debounce)
		}
	}
}

// Close stops the watcher. Run returns once its channels close.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.paths = make(map[string]bool)
	return w.fsw.Close()
}
