package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/statecheck/internal/api"
	"github.com/JaimeStill/statecheck/internal/app"
	"github.com/JaimeStill/statecheck/internal/config"
	"github.com/JaimeStill/statecheck/internal/infrastructure"
	"github.com/JaimeStill/statecheck/pkg/module"
)

// Modules holds the prefix-mounted modules served by the router.
type Modules struct {
	API *module.Module
	App *module.Module
}

// NewModules builds the API and page modules.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	appModule, err := app.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API: api.NewModule(cfg, infra),
		App: appModule,
	}, nil
}

// Mount registers every module on the router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.App)
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, cfg.App.BasePath+"/", http.StatusFound)
	})

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	return router
}
