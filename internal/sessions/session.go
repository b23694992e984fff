package sessions

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JaimeStill/statecheck/internal/corrections"
)

// Session owns one State and serializes every access to it.
type Session struct {
	id       string
	mu       sync.Mutex
	state    *State
	lastSeen atomic.Int64
}

func newSession(state *State, now time.Time) *Session {
	s := &Session{id: state.UID, state: state}
	s.touch(now)
	return s
}

// ID returns the session UID carried in the cookie.
func (s *Session) ID() string {
	return s.id
}

// Update runs fn with exclusive access to the session state.
func (s *Session) Update(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// WithStore runs fn with exclusive access to the session's correction store.
func (s *Session) WithStore(fn func(store *corrections.Store)) {
	s.Update(func(st *State) {
		fn(st.Corrections)
	})
}

// LastSeen returns the time of the session's most recent request.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

type ctxKey struct{}

type binding struct {
	session *Session
	fresh   bool
}

// WithSession returns a context carrying session. fresh marks a session
// created by the current request.
func WithSession(ctx context.Context, session *Session, fresh bool) context.Context {
	return context.WithValue(ctx, ctxKey{}, binding{session: session, fresh: fresh})
}

// FromContext returns the session bound by the middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	b, ok := ctx.Value(ctxKey{}).(binding)
	if !ok || b.session == nil {
		return nil, false
	}
	return b.session, true
}

// IsFresh reports whether the request's session was created by that request.
// A browser that keeps getting fresh sessions is not returning the cookie.
func IsFresh(ctx context.Context) bool {
	b, _ := ctx.Value(ctxKey{}).(binding)
	return b.fresh
}

// Owner resolves the correction store owner for a request.
func Owner(r *http.Request) (corrections.Owner, error) {
	s, ok := FromContext(r.Context())
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}
