package api

import (
	"github.com/JaimeStill/statecheck/internal/corrections"
	"github.com/JaimeStill/statecheck/internal/sessions"
)

// Domain holds the handlers that comprise the API.
type Domain struct {
	Corrections *corrections.Handler
	Sessions    *sessions.Handler
}

// NewDomain creates the API handlers from the runtime. Correction routes
// operate on the store owned by the requesting session.
func NewDomain(runtime *Runtime) *Domain {
	return &Domain{
		Corrections: corrections.NewHandler(
			sessions.Owner,
			runtime.Logger,
			runtime.MaxBodySize,
		),
		Sessions: runtime.Sessions.Handler(),
	}
}
