// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, lifecycle, sessions) that modules require.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/statecheck/internal/config"
	"github.com/JaimeStill/statecheck/internal/sessions"
	"github.com/JaimeStill/statecheck/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Sessions  sessions.System
}

// New creates an Infrastructure that logs to stderr.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config, opts ...sessions.Option) *Infrastructure {
	return NewWithWriter(cfg, os.Stderr, opts...)
}

// NewWithWriter is New with an explicit log destination.
func NewWithWriter(cfg *config.Config, w io.Writer, opts ...sessions.Option) *Infrastructure {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	return &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Sessions:  sessions.New(&cfg.Session, logger, opts...),
	}
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Sessions.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("sessions start failed: %w", err)
	}
	return nil
}
