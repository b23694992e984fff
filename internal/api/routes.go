package api

import (
	"net/http"

	"github.com/JaimeStill/statecheck/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Corrections.Routes(),
		domain.Sessions.Routes(),
	)
}
