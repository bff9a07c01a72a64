// Package watch ingests files dropped into a directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Default watcher tuning.
const (
	DefaultSettleDelay     = 500 * time.Millisecond
	DefaultFilesPerSecond  = 5.0
	DefaultBurst           = 10
	minSettleCheckInterval = 10 * time.Millisecond
)

// Handler ingests one file. Errors are logged and do not stop the watcher.
type Handler func(ctx context.Context, path string) error

// Watcher hands new and modified files in a directory to a Handler.
// A file is handled once writes to it have stopped for the settle delay.
type Watcher struct {
	dir         string
	handle      Handler
	limiter     *rate.Limiter
	settle      time.Duration
	initialScan bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithRate limits how many files are handled per second.
func WithRate(perSecond float64, burst int) Option {
	return func(w *Watcher) {
		if perSecond > 0 && burst > 0 {
			w.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithSettleDelay sets how long a file must be quiet before it is handled.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithInitialScan handles files already present when Run starts.
func WithInitialScan(enabled bool) Option {
	return func(w *Watcher) {
		w.initialScan = enabled
	}
}

// New creates a watcher for dir.
func New(dir string, handle Handler, opts ...Option) *Watcher {
	w := &Watcher{
		dir:     dir,
		handle:  handle,
		limiter: rate.NewLimiter(rate.Limit(DefaultFilesPerSecond), DefaultBurst),
		settle:  DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s", w.dir)

	pending := make(map[string]time.Time)
	if w.initialScan {
		existing, err := w.Scan()
		if err != nil {
			return err
		}
		now := time.Now()
		for _, path := range existing {
			pending[path] = now
		}
	}

	interval := w.settle / 2
	if interval < minSettleCheckInterval {
		interval = minSettleCheckInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleFsEvent(event); ok {
				pending[path] = time.Now().Add(w.settle)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case now := <-ticker.C:
			for _, path := range due(pending, now) {
				delete(pending, path)
				if err := w.process(ctx, path); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					logger.Warn("Failed to ingest %s: %v", path, err)
				}
			}
		}
	}
}

// Scan returns the regular, non-hidden files currently in the directory, sorted.
func (w *Watcher) Scan() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", w.dir, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || isHidden(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(w.dir, e.Name()))
	}
	return paths, nil
}

func (w *Watcher) process(ctx context.Context, path string) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}
	// The file may have been removed while settling.
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	return w.handle(ctx, path)
}

// handleFsEvent returns the path to ingest for a create or write event on a
// visible regular file.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if isHidden(filepath.Base(event.Name)) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

// due returns the pending paths whose settle deadline has passed, sorted.
func due(pending map[string]time.Time, now time.Time) []string {
	var paths []string
	for path, deadline := range pending {
		if !now.Before(deadline) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." do not count.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
