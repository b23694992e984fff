package lifecycle_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/statecheck/pkg/lifecycle"
)

func TestNotReadyBeforeStartup(t *testing.T) {
	lc := lifecycle.New()
	assert.False(t, lc.Ready(), "should not be ready before WaitForStartup")
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() {
			count.Add(1)
		})
	}

	lc.WaitForStartup()

	assert.Equal(t, int32(3), count.Load())
	assert.True(t, lc.Ready())
}

func TestShutdownHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var cleaned atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		cleaned.Store(true)
	})

	lc.WaitForStartup()

	require.NoError(t, lc.Shutdown(5*time.Second))
	assert.True(t, cleaned.Load(), "shutdown hook did not execute")
	assert.False(t, lc.Ready(), "should not report ready after shutdown")
}

func TestBackgroundStopsOnShutdown(t *testing.T) {
	lc := lifecycle.New()

	var ticks atomic.Int32
	var stopped atomic.Bool
	lc.Background(func(ctx context.Context) {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				stopped.Store(true)
				return
			case <-ticker.C:
				ticks.Add(1)
			}
		}
	})

	require.Eventually(t, func() bool { return ticks.Load() > 0 }, time.Second, time.Millisecond)
	require.NoError(t, lc.Shutdown(5*time.Second))
	assert.True(t, stopped.Load())
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(500 * time.Millisecond)
	})

	lc.WaitForStartup()

	assert.Error(t, lc.Shutdown(50*time.Millisecond))
}

func TestContextCancelledOnShutdown(t *testing.T) {
	lc := lifecycle.New()
	lc.WaitForStartup()

	require.NoError(t, lc.Shutdown(5*time.Second))

	select {
	case <-lc.Context().Done():
	default:
		t.Error("context should be cancelled after shutdown")
	}
}
