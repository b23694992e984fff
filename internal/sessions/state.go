// Package sessions keeps the per-browser-session state behind a cookie: the
// session UID, a debug counter, and the session's correction store.
package sessions

import (
	"time"

	"github.com/JaimeStill/statecheck/internal/corrections"
)

// State is the data owned by one session. It is only reachable through
// Session.Update, which serializes access.
type State struct {
	UID         string
	Counter     int
	Renders     int
	CreatedAt   time.Time
	Corrections *corrections.Store

	flash Flash
}

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Level   string
	Message string
}

// Flash levels.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

// Info is the JSON view of a session's state.
type Info struct {
	UID       string    `json:"uid"`
	Counter   int       `json:"counter"`
	Renders   int       `json:"renders"`
	Overrides int       `json:"overrides"`
	CreatedAt time.Time `json:"created_at"`
	Fresh     bool      `json:"fresh"`
}

func newState(uid string, now corrections.Clock) *State {
	return &State{
		UID:         uid,
		CreatedAt:   now(),
		Corrections: corrections.NewStore(now),
	}
}

// Increment bumps the debug counter and returns the new value.
func (s *State) Increment() int {
	s.Counter++
	return s.Counter
}

// SetFlash stores a one-shot message for the next page render.
func (s *State) SetFlash(level, msg string) {
	s.flash = Flash{Level: level, Message: msg}
}

// TakeFlash returns and clears the pending flash message. The zero Flash
// means nothing is pending.
func (s *State) TakeFlash() Flash {
	f := s.flash
	s.flash = Flash{}
	return f
}

// Info summarizes the state. fresh reports whether the session was created
// by the current request.
func (s *State) Info(fresh bool) Info {
	return Info{
		UID:       s.UID,
		Counter:   s.Counter,
		Renders:   s.Renders,
		Overrides: s.Corrections.Len(),
		CreatedAt: s.CreatedAt,
		Fresh:     fresh,
	}
}
