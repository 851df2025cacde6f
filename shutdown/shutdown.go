/*
Package shutdown coordinates process teardown.

Collaborators register cleanup functions; on SIGINT/SIGTERM (or parent context
cancellation) they run in reverse registration order, so the coordinator
deregisters from the mesh before its store and broker connections close.
*/
package shutdown

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dambileh/civitas-bus/logger"
)

// CleanupFunc releases one resource. The passed context bounds how long the
// cleanup may take.
type CleanupFunc func(ctx context.Context) error

type cleanup struct {
	name string
	fn   CleanupFunc
}

type Hook struct {
	mu sync.Mutex

	log      logger.Logger
	cleanups []cleanup
}

func New(log logger.Logger) *Hook {
	return &Hook{
		log: log,
	}
}

// Add registers a named cleanup. Safe for concurrent use.
func (h *Hook) Add(name string, fn CleanupFunc) {
	h.mu.Lock()
	h.cleanups = append(h.cleanups, cleanup{name: name, fn: fn})
	h.mu.Unlock()
}

// Wait blocks until SIGINT or SIGTERM arrives or ctx is canceled, then runs
// the registered cleanups.
func (h *Hook) Wait(ctx context.Context) error {
	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-signalCtx.Done()

	h.log.Info("shutdown requested")

	// Signal delivery canceled signalCtx; cleanups need a live context
	return h.Cleanup(context.WithoutCancel(ctx))
}

// Cleanup runs the registered cleanups in reverse registration order. The
// first failure aborts the remaining cleanups and is returned.
func (h *Hook) Cleanup(ctx context.Context) error {
	h.mu.Lock()
	cleanups := append([]cleanup(nil), h.cleanups...)
	h.cleanups = nil
	h.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		h.log.Info("running cleanup", "name", cleanups[i].name)

		if err := cleanups[i].fn(ctx); err != nil {
			return fmt.Errorf("shutdown: cleanup %s: %w", cleanups[i].name, err)
		}
	}

	return nil
}
