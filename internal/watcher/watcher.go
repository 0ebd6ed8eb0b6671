// Package watcher monitors the data file for external modifications so a
// long-running bot can reload lists edited through the CLI.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceDuration is the default debounce window for batching
// rapid changes.
const DefaultDebounceDuration = 500 * time.Millisecond

// Config holds file watcher configuration.
type Config struct {
	Path             string        // Data file to watch
	DebounceDuration time.Duration // Debounce window to batch rapid changes
	OnChange         func()        // Callback after the file settles
}

// Watcher monitors a single file and triggers a reload callback when it
// changes. The file's parent directory is watched rather than the file
// itself: atomic saves replace the file via rename, which would detach a
// direct watch.
type Watcher struct {
	cfg     Config
	fsw     *fsnotify.Watcher
	target  string
	stopCh  chan struct{}
	stopped bool
	mu      sync.Mutex
}

// New creates a new Watcher for the configured path.
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watcher path cannot be empty")
	}
	if cfg.DebounceDuration <= 0 {
		cfg.DebounceDuration = DefaultDebounceDuration
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		cfg:    cfg,
		fsw:    fsw,
		target: filepath.Base(cfg.Path),
		stopCh: make(chan struct{}),
	}, nil
}

// Start begins watching and returns immediately.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watcher has been stopped and cannot be restarted")
	}
	w.mu.Unlock()

	dir := filepath.Dir(w.cfg.Path)
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %q: %w", dir, err)
	}

	go w.eventLoop()
	return nil
}

// Stop stops the watcher and cleans up resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.stopped = true
	close(w.stopCh)
	_ = w.fsw.Close()
}

func (w *Watcher) eventLoop() {
	var debounceTimer *time.Timer
	debounceCh := make(chan struct{}, 1)

	resetDebounce := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(w.cfg.DebounceDuration, func() {
			select {
			case debounceCh <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != w.target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			resetDebounce()

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

		case <-debounceCh:
			if w.cfg.OnChange != nil {
				w.cfg.OnChange()
			}
		}
	}
}
