// Package api assembles the JSON API module with session and correction routes.
package api

import (
	"net/http"

	"github.com/JaimeStill/statecheck/internal/config"
	"github.com/JaimeStill/statecheck/internal/infrastructure"
	"github.com/JaimeStill/statecheck/pkg/middleware"
	"github.com/JaimeStill/statecheck/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) *module.Module {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(runtime.Sessions.Middleware())

	return m
}
