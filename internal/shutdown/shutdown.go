// Package shutdown coordinates graceful teardown of the bot process: stop
// the update loop, stop the file watcher, and flush storage before exit.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"listbot/internal/utils"
)

// StopFunc releases one resource during shutdown
type StopFunc func(ctx context.Context) error

type stopEntry struct {
	name string
	fn   StopFunc
}

// Handler runs registered stop functions when the process receives an
// interrupt, in LIFO order so dependents stop before their dependencies.
type Handler struct {
	mu      sync.Mutex
	stops   []stopEntry
	stopCh  chan struct{}
	once    sync.Once
	timeout time.Duration
	logger  *utils.Logger
}

// New creates a Handler with the given per-shutdown timeout
func New(timeout time.Duration) *Handler {
	return &Handler{
		stopCh:  make(chan struct{}),
		timeout: timeout,
		logger:  utils.GetLogger(),
	}
}

// OnStop registers a stop function. Registration order matters: functions
// run in reverse order of registration.
func (h *Handler) OnStop(name string, fn StopFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stops = append(h.stops, stopEntry{name: name, fn: fn})
}

// Notify installs signal handlers for SIGINT and SIGTERM. The first signal
// triggers shutdown; a second signal kills the process immediately.
func (h *Handler) Notify() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		h.Trigger()
		<-sigCh
		os.Exit(1)
	}()
}

// Trigger starts the shutdown. Safe to call multiple times.
func (h *Handler) Trigger() {
	h.once.Do(func() {
		close(h.stopCh)
	})
}

// Done returns a channel closed when shutdown has been triggered
func (h *Handler) Done() <-chan struct{} {
	return h.stopCh
}

// Run blocks until shutdown is triggered, then executes the registered stop
// functions under the configured timeout.
func (h *Handler) Run() {
	<-h.stopCh

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	stops := make([]stopEntry, len(h.stops))
	copy(stops, h.stops)
	h.mu.Unlock()

	for i := len(stops) - 1; i >= 0; i-- {
		if err := stops[i].fn(ctx); err != nil {
			h.logger.Warn("Shutdown step %q failed: %v", stops[i].name, err)
		}
		if ctx.Err() != nil {
			h.logger.Warn("Shutdown timed out with steps remaining")
			return
		}
	}
}
