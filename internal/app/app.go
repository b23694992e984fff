// Package app serves the session-state diagnostic page. Every form posts an
// action that mutates the session, then redirects back to the page so the
// next render shows whether the state survived.
package app

import (
	"embed"
	"fmt"
	"net/http"
	"time"

	"github.com/JaimeStill/statecheck/internal/config"
	"github.com/JaimeStill/statecheck/internal/infrastructure"
	"github.com/JaimeStill/statecheck/pkg/middleware"
	"github.com/JaimeStill/statecheck/pkg/module"
	"github.com/JaimeStill/statecheck/pkg/routes"
	"github.com/JaimeStill/statecheck/pkg/web"
)

//go:embed layouts/*.html views/*.html static/*
var assets embed.FS

const layout = "app"

// NewModule creates the page module mounted at the configured app base path.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	logger := infra.Logger.With("module", "app")

	index := web.ViewDef{Route: "/{$}", Template: "index.html", Title: cfg.App.Title}
	notFound := web.ViewDef{Template: "not-found.html", Title: "Not Found"}

	ts, err := web.NewTemplateSet(
		assets,
		"layouts/*.html",
		"views",
		cfg.App.BasePath,
		nil,
		[]web.ViewDef{index, notFound},
	)
	if err != nil {
		return nil, fmt.Errorf("app templates: %w", err)
	}

	p := &page{now: time.Now}
	a := &actions{
		basePath: cfg.App.BasePath,
		maxBody:  cfg.API.MaxBodySizeBytes(),
		logger:   logger.With("handler", "actions"),
	}

	router := web.NewRouter()
	router.HandleFunc("GET "+index.Route, ts.PageHandler(layout, index, p.load))
	router.Handle("GET /static/", web.DistServer(assets, "static", "/static/"))
	routes.Register(router, a.routes())
	router.SetFallback(ts.ErrorHandler(layout, notFound, http.StatusNotFound))

	m := module.New(cfg.App.BasePath, router)
	m.Use(middleware.Logger(logger))
	m.Use(infra.Sessions.Middleware())

	return m, nil
}
