package api

import (
	"github.com/JaimeStill/statecheck/internal/config"
	"github.com/JaimeStill/statecheck/internal/infrastructure"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	MaxBodySize int64
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Sessions:  infra.Sessions,
		},
		MaxBodySize: cfg.API.MaxBodySizeBytes(),
	}
}
