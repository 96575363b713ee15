// Package watcher reports external edits to the schedule document.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/confsched/internal/logger"
)

// DefaultDebounce collapses the burst of events produced by one save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher calls onChange after the watched file was created, written,
// replaced or removed. Bursts of events within the debounce window produce
// a single call.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func()

	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	timer   *time.Timer
	running bool
}

// New creates a watcher for path. It must be started with Start.
func New(path string, debounce time.Duration, onChange func()) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  w,
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		done:     make(chan struct{}),
	}, nil
}

// Start watches the file's parent directory. Saves replace the file by
// rename, so watching the file itself would lose track after one write.
// A failed Start releases the underlying watcher; the Watcher cannot be
// started again.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		_ = w.watcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	w.running = true
	w.wg.Add(1)
	go w.processEvents()

	logger.Debug("Watching schedule document", "path", w.path)
	return nil
}

// Stop ends watching and blocks until the event loop has exited.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.done)

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.wg.Wait()
	return nil
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Schedule watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	abs, err := filepath.Abs(event.Name)
	if err != nil || abs != w.path {
		return false
	}
	// Ignore chmod and other events
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()

	if running && w.onChange != nil {
		w.onChange()
	}
}

// IsRunning returns true if the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
