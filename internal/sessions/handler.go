package sessions

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/statecheck/pkg/handlers"
	"github.com/JaimeStill/statecheck/pkg/routes"
)

// Handler provides HTTP endpoints for inspecting and mutating the requesting session.
type Handler struct {
	reg    *registry
	logger *slog.Logger
}

// newHandler creates a Handler bound to the given registry.
func newHandler(reg *registry, logger *slog.Logger) *Handler {
	return &Handler{
		reg:    reg,
		logger: logger.With("handler", "sessions"),
	}
}

// Routes returns the route group definition for session endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/session",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Info},
			{Method: "DELETE", Pattern: "", Handler: h.Reset},
			{Method: "POST", Pattern: "/counter", Handler: h.Increment},
		},
	}
}

// Info returns the session UID, counter, and override count.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var info Info
	s.Update(func(st *State) {
		info = st.Info(IsFresh(r.Context()))
	})

	handlers.RespondJSON(w, http.StatusOK, info)
}

// Increment bumps the debug counter.
func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var info Info
	s.Update(func(st *State) {
		st.Increment()
		info = st.Info(IsFresh(r.Context()))
	})

	handlers.RespondJSON(w, http.StatusOK, info)
}

// Reset drops the session and expires its cookie. The next request starts a new session.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	h.reg.Reset(s.ID())
	http.SetCookie(w, h.reg.expiredCookie())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	s, ok := FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, ErrNoSession)
		return nil, false
	}
	return s, true
}
