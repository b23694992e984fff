package sessions

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/statecheck/internal/corrections"
	"github.com/JaimeStill/statecheck/pkg/lifecycle"
)

// System is the in-memory session registry. Sessions live only for the
// process lifetime and are evicted after sitting idle.
type System interface {
	// Start registers the idle sweeper with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Middleware binds the request's session to its context, creating a
	// session and setting the cookie when none is found.
	Middleware() func(http.Handler) http.Handler
	// Lookup returns the live session with the given id.
	Lookup(id string) (*Session, bool)
	// Reset removes the session with the given id. Reports whether it existed.
	Reset(id string) bool
	// Sweep evicts idle sessions and returns how many were removed.
	Sweep() int
	// Len returns the number of live sessions.
	Len() int
	// Handler returns the HTTP handler for session endpoints.
	Handler() *Handler
	// CookieName returns the name of the session cookie.
	CookieName() string
}

// Option customizes a registry.
type Option func(*registry)

// WithClock overrides the registry and store clock.
func WithClock(now corrections.Clock) Option {
	return func(r *registry) {
		r.now = now
	}
}

type registry struct {
	cfg      *Config
	logger   *slog.Logger
	now      corrections.Clock
	mu       sync.RWMutex
	sessions map[string]*Session
}

// New creates a session registry from the given configuration.
func New(cfg *Config, logger *slog.Logger, opts ...Option) System {
	r := &registry{
		cfg:      cfg,
		logger:   logger.With("system", "sessions"),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *registry) Start(lc *lifecycle.Coordinator) error {
	r.logger.Info("starting session registry")

	lc.OnStartup(func() {
		r.logger.Info(
			"session registry ready",
			"cookie", r.cfg.CookieName,
			"idle_timeout", r.cfg.IdleTimeout,
			"sweep_interval", r.cfg.SweepInterval,
		)
	})

	lc.Background(func(ctx context.Context) {
		ticker := time.NewTicker(r.cfg.SweepIntervalDuration())
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.logger.Info("session sweeper stopped", "live", r.Len())
				return
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					r.logger.Info("expired idle sessions", "evicted", n, "live", r.Len())
				}
			}
		}
	})

	return nil
}

func (r *registry) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			session, fresh := r.resolve(req)
			if fresh {
				http.SetCookie(w, r.cookie(session.ID()))
			}
			next.ServeHTTP(w, req.WithContext(WithSession(req.Context(), session, fresh)))
		})
	}
}

func (r *registry) Lookup(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *registry) Reset(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	r.logger.Info("session reset", "session", id)
	return true
}

func (r *registry) Sweep() int {
	cutoff := r.now().Add(-r.cfg.IdleTimeoutDuration())

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (r *registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *registry) Handler() *Handler {
	return newHandler(r, r.logger)
}

func (r *registry) CookieName() string {
	return r.cfg.CookieName
}

func (r *registry) resolve(req *http.Request) (*Session, bool) {
	if c, err := req.Cookie(r.cfg.CookieName); err == nil {
		if s, ok := r.Lookup(c.Value); ok {
			s.touch(r.now())
			return s, false
		}
		r.logger.Debug("unknown session cookie", "session", c.Value)
	}
	return r.create(), true
}

func (r *registry) create() *Session {
	state := newState(uuid.NewString(), r.now)
	s := newSession(state, r.now())

	r.mu.Lock()
	r.sessions[s.ID()] = s
	live := len(r.sessions)
	r.mu.Unlock()

	r.logger.Debug("session created", "session", s.ID(), "live", live)
	return s
}

func (r *registry) cookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     r.cfg.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (r *registry) expiredCookie() *http.Cookie {
	c := r.cookie("")
	c.MaxAge = -1
	return c
}
