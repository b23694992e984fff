package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/JaimeStill/statecheck/internal/corrections"
	"github.com/JaimeStill/statecheck/internal/sessions"
	"github.com/JaimeStill/statecheck/pkg/handlers"
	"github.com/JaimeStill/statecheck/pkg/routes"
)

// Form field names shared with the templates.
const (
	fieldSelected  = "selected"
	fieldKey       = "key"
	fieldImageKey  = "image_key"
	fieldOriginal  = "original"
	fieldCorrected = "corrected"
)

type actions struct {
	basePath string
	maxBody  int64
	logger   *slog.Logger
}

func (a *actions) routes() routes.Group {
	return routes.Group{
		Prefix: "/actions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/increment", Handler: a.increment},
			{Method: "POST", Pattern: "/demo", Handler: a.demo},
			{Method: "POST", Pattern: "/clear", Handler: a.clear},
			{Method: "POST", Pattern: "/rerun", Handler: a.rerun},
			{Method: "POST", Pattern: "/save", Handler: a.save},
			{Method: "POST", Pattern: "/update", Handler: a.update},
			{Method: "POST", Pattern: "/delete", Handler: a.delete},
			{Method: "POST", Pattern: "/delete-history", Handler: a.deleteHistory},
		},
	}
}

func (a *actions) increment(w http.ResponseWriter, r *http.Request) {
	a.apply(w, r, func(st *sessions.State) string {
		st.Increment()
		return r.PostFormValue(fieldSelected)
	})
}

func (a *actions) demo(w http.ResponseWriter, r *http.Request) {
	a.apply(w, r, func(st *sessions.State) string {
		st.Corrections.SaveDemo()
		return r.PostFormValue(fieldSelected)
	})
}

func (a *actions) clear(w http.ResponseWriter, r *http.Request) {
	a.apply(w, r, func(st *sessions.State) string {
		st.Corrections.ClearAll()
		return ""
	})
}

func (a *actions) rerun(w http.ResponseWriter, r *http.Request) {
	a.apply(w, r, func(*sessions.State) string {
		return r.PostFormValue(fieldSelected)
	})
}

func (a *actions) save(w http.ResponseWriter, r *http.Request) {
	a.apply(w, r, func(st *sessions.State) string {
		key := r.PostFormValue(fieldImageKey)
		selected := r.PostFormValue(fieldSelected)

		if err := corrections.ValidateKey(key); err != nil {
			st.SetFlash(sessions.FlashError, "Image storage key must not be blank or longer than 256 bytes.")
			return selected
		}

		st.Corrections.SaveOverride(key, r.PostFormValue(fieldOriginal), r.PostFormValue(fieldCorrected))
		st.SetFlash(sessions.FlashSuccess, "Saved to session corrections.")

		if _, ok := st.Corrections.Override(key); ok {
			return key
		}
		return selected
	})
}

// update re-saves the selected key with its stored original and the edited
// corrected text. A blank edit only adds a history event.
func (a *actions) update(w http.ResponseWriter, r *http.Request) {
	a.apply(w, r, func(st *sessions.State) string {
		key := r.PostFormValue(fieldKey)
		if err := corrections.ValidateKey(key); err != nil {
			st.SetFlash(sessions.FlashError, "No override selected.")
			return ""
		}

		entry, _ := st.Corrections.Override(key)
		st.Corrections.SaveOverride(key, entry.Original, r.PostFormValue(fieldCorrected))
		st.SetFlash(sessions.FlashSuccess, "Override updated.")
		return key
	})
}

func (a *actions) delete(w http.ResponseWriter, r *http.Request) {
	a.apply(w, r, func(st *sessions.State) string {
		st.Corrections.DeleteOverride(r.PostFormValue(fieldKey))
		st.SetFlash(sessions.FlashSuccess, "Override deleted (history kept).")
		return ""
	})
}

func (a *actions) deleteHistory(w http.ResponseWriter, r *http.Request) {
	a.apply(w, r, func(st *sessions.State) string {
		st.Corrections.DeleteOverrideAndHistory(r.PostFormValue(fieldKey))
		st.SetFlash(sessions.FlashSuccess, "Override and history deleted.")
		return ""
	})
}

// apply parses the form, runs fn under the session lock, and redirects to
// the page with the key fn returns selected.
func (a *actions) apply(w http.ResponseWriter, r *http.Request, fn func(st *sessions.State) string) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxBody)
	if err := r.ParseForm(); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		handlers.RespondError(w, a.logger, status, fmt.Errorf("parse form: %w", err))
		return
	}

	s, ok := sessions.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, a.logger, http.StatusInternalServerError, sessions.ErrNoSession)
		return
	}

	var key string
	s.Update(func(st *sessions.State) {
		key = fn(st)
	})

	a.logger.Debug("action applied", "path", r.URL.Path, "session", s.ID())
	http.Redirect(w, r, a.pageURL(key), http.StatusSeeOther)
}

func (a *actions) pageURL(key string) string {
	target := a.basePath + "/"
	if key != "" {
		target += "?" + url.Values{fieldKey: {key}}.Encode()
	}
	return target
}
