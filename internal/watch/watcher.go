// Package watch notices changes made to the SQLite database file by other
// processes and invalidates live queries so they re-read the store.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"chatterhub/internal/domain/repositories"
)

// DefaultDebounce batches rapid file events into one invalidation
const DefaultDebounce = 250 * time.Millisecond

// Invalidator is told to re-evaluate everything
type Invalidator interface {
	Invalidate(collections ...repositories.Collection)
}

// Stats tracks watcher activity
type Stats struct {
	Events        int
	Ignored       int // events attributed to writes made by this process
	Invalidations int
	Errors        int
}

// FileWatcher watches a database file and its -wal/-journal companions
type FileWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	target   Invalidator
	logger   *slog.Logger
	dir      string
	base     string
	debounce time.Duration

	lastLocal time.Time
	pending   bool
	pendingAt time.Time
	stats     Stats

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewFileWatcher creates a watcher for the database at path
func NewFileWatcher(path string, target Invalidator, logger *slog.Logger, debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	return &FileWatcher{
		watcher:  watcher,
		target:   target,
		logger:   logger,
		dir:      filepath.Dir(abs),
		base:     filepath.Base(abs),
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// NoteLocalWrite records a write made through this process's store. File
// events within the debounce window after it are not treated as external.
// Its signature matches store.WriteHook.
func (w *FileWatcher) NoteLocalWrite(repositories.Collection) {
	w.mu.Lock()
	w.lastLocal = time.Now()
	w.mu.Unlock()
}

// Start begins watching. It does not block.
func (w *FileWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the directory: SQLite replaces and recreates its companion files
	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Info("watching database file", "dir", w.dir, "file", w.base)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine
func (w *FileWatcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("error closing file watcher", "error", err)
	}
}

// Stats returns a copy of the counters
func (w *FileWatcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *FileWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	interval := w.debounce / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *FileWatcher) handleEvent(event fsnotify.Event) {
	if !w.matches(event.Name) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stats.Events++
	if now.Sub(w.lastLocal) < w.debounce {
		w.stats.Ignored++
		return
	}
	w.pending = true
	w.pendingAt = now
}

func (w *FileWatcher) flushPending() {
	w.mu.Lock()
	if !w.pending || time.Since(w.pendingAt) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.stats.Invalidations++
	w.mu.Unlock()

	w.logger.Debug("external database change, invalidating live queries", "file", w.base)
	w.target.Invalidate()
}

// matches accepts the database file and its -wal and -journal companions
func (w *FileWatcher) matches(name string) bool {
	b := filepath.Base(name)
	if b == w.base {
		return true
	}
	if !strings.HasPrefix(b, w.base+"-") {
		return false
	}
	switch strings.TrimPrefix(b, w.base+"-") {
	case "wal", "journal":
		return true
	}
	return false
}
