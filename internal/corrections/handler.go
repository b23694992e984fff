package corrections

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/statecheck/pkg/handlers"
	"github.com/JaimeStill/statecheck/pkg/routes"
)

// Owner is the session that owns a Store and serializes access to it.
type Owner interface {
	WithStore(fn func(s *Store))
}

// OwnerFunc resolves the Owner bound to a request.
type OwnerFunc func(r *http.Request) (Owner, error)

// Handler provides HTTP endpoints for the requesting session's correction store.
type Handler struct {
	owner   OwnerFunc
	logger  *slog.Logger
	maxBody int64
}

// KeyList is the response body for the override listing.
type KeyList struct {
	Keys  []string `json:"keys"`
	Count int      `json:"count"`
}

// NewHandler creates a Handler that resolves stores through owner and limits
// request bodies to maxBody bytes.
func NewHandler(owner OwnerFunc, logger *slog.Logger, maxBody int64) *Handler {
	return &Handler{
		owner:   owner,
		logger:  logger.With("handler", "corrections"),
		maxBody: maxBody,
	}
}

// Routes returns the route group definition for correction endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/snapshot", Handler: h.Snapshot},
		},
		Children: []routes.Group{
			{
				Prefix: "/corrections",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.List},
					{Method: "DELETE", Pattern: "", Handler: h.Clear},
					{Method: "POST", Pattern: "/demo", Handler: h.Demo},
					{Method: "GET", Pattern: "/{key}", Handler: h.Find},
					{Method: "PUT", Pattern: "/{key}", Handler: h.Save},
					{Method: "DELETE", Pattern: "/{key}", Handler: h.Delete},
					{Method: "GET", Pattern: "/{key}/history", Handler: h.History},
				},
			},
		},
	}
}

// List returns the sorted override keys.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var keys []string
	if !h.withStore(w, r, func(s *Store) {
		keys = s.ListOverrideKeys()
	}) {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, KeyList{Keys: keys, Count: len(keys)})
}

// Find returns the override stored for the key path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}

	var (
		entry CorrectionEntry
		found bool
	)
	if !h.withStore(w, r, func(s *Store) {
		entry, found = s.Override(key)
	}) {
		return
	}

	if !found {
		h.fail(w, ErrNotFound)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, entry)
}

// Save records a save attempt for the key and returns the updated view-model.
// A blank corrected value is logged to history without creating an override.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}

	cmd, err := handlers.DecodeJSON[SaveCommand](w, r, h.maxBody)
	if err != nil {
		if MapHTTPStatus(err) == http.StatusInternalServerError {
			err = fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		h.fail(w, err)
		return
	}

	var result Result
	if !h.withStore(w, r, func(s *Store) {
		s.SaveOverride(key, cmd.Original, cmd.Corrected)
		result = s.Result(key)
	}) {
		return
	}

	h.logger.Info("correction saved", "key", key, "overridden", result.Overridden, "history", result.History)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Demo writes the fixed demo override and returns its view-model.
func (h *Handler) Demo(w http.ResponseWriter, r *http.Request) {
	var result Result
	if !h.withStore(w, r, func(s *Store) {
		s.SaveDemo()
		result = s.Result(DemoKey)
	}) {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete removes the override for the key. With ?history=true the key's
// history is removed as well.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}

	withHistory, err := boolQuery(r, "history")
	if err != nil {
		h.fail(w, err)
		return
	}

	if !h.withStore(w, r, func(s *Store) {
		if withHistory {
			s.DeleteOverrideAndHistory(key)
			return
		}
		s.DeleteOverride(key)
	}) {
		return
	}

	h.logger.Info("override deleted", "key", key, "history", withHistory)
	w.WriteHeader(http.StatusNoContent)
}

// Clear discards every override and all history in the session.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if !h.withStore(w, r, func(s *Store) {
		s.ClearAll()
	}) {
		return
	}

	h.logger.Info("corrections cleared")
	w.WriteHeader(http.StatusNoContent)
}

// History returns the key's history, oldest first, or most recent first
// with ?order=recent.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}

	order := r.URL.Query().Get("order")
	if order != "" && order != "recent" && order != "chronological" {
		h.fail(w, fmt.Errorf("%w: order=%q", ErrInvalidQuery, order))
		return
	}

	var events []HistoryEvent
	if !h.withStore(w, r, func(s *Store) {
		if order == "recent" {
			events = s.RecentHistory(key)
			return
		}
		events = s.History(key)
	}) {
		return
	}

	handlers.RespondJSON(w, http.StatusOK, events)
}

// Snapshot returns a copy of the whole store as JSON, or YAML with
// ?format=yaml. ?flat=true renders the single-namespace form.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "yaml" {
		h.fail(w, fmt.Errorf("%w: format=%q", ErrInvalidQuery, format))
		return
	}

	flat, err := boolQuery(r, "flat")
	if err != nil {
		h.fail(w, err)
		return
	}

	var snap Snapshot
	if !h.withStore(w, r, func(s *Store) {
		snap = s.Snapshot()
	}) {
		return
	}

	var body any = snap
	if flat {
		body = snap.Flatten()
	}

	if format == "yaml" {
		handlers.RespondYAML(w, http.StatusOK, body)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, body)
}

func (h *Handler) withStore(w http.ResponseWriter, r *http.Request, fn func(s *Store)) bool {
	owner, err := h.owner(r)
	if err != nil {
		h.fail(w, err)
		return false
	}
	owner.WithStore(fn)
	return true
}

func (h *Handler) key(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.PathValue("key")
	if err := ValidateKey(key); err != nil {
		h.fail(w, err)
		return "", false
	}
	return key, true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}

func boolQuery(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidQuery, name, v)
	}
	return b, nil
}
