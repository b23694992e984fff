// Package lifecycle coordinates startup readiness, background workers, and
// graceful shutdown for the service's subsystems.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Coordinator tracks three kinds of work: startup hooks that gate readiness,
// shutdown hooks that block on the coordinator context, and background
// workers that run until that context is cancelled.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	starting sync.WaitGroup
	stopping sync.WaitGroup
	ready    atomic.Bool
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn concurrently. WaitForStartup blocks until it returns.
func (c *Coordinator) OnStartup(fn func()) {
	c.starting.Go(fn)
}

// OnShutdown runs fn concurrently. Hooks block on <-Context().Done() before
// doing their cleanup; Shutdown waits for them.
func (c *Coordinator) OnShutdown(fn func()) {
	c.stopping.Go(fn)
}

// Background runs fn with the coordinator context. fn must return once the
// context is cancelled; Shutdown waits for it.
func (c *Coordinator) Background(fn func(ctx context.Context)) {
	c.stopping.Go(func() {
		fn(c.ctx)
	})
}

// Ready reports whether startup finished and shutdown has not begun.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// WaitForStartup blocks until every startup hook has returned, then marks
// the coordinator ready.
func (c *Coordinator) WaitForStartup() {
	c.starting.Wait()
	c.ready.Store(true)
}

// Shutdown withdraws readiness, cancels the context, and waits up to timeout
// for shutdown hooks and background workers.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.ready.Store(false)
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.stopping.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
