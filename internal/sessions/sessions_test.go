package sessions_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/JaimeStill/statecheck/internal/corrections"
	"github.com/JaimeStill/statecheck/internal/sessions"
	"github.com/JaimeStill/statecheck/pkg/lifecycle"
	"github.com/JaimeStill/statecheck/pkg/routes"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func newSystem(t *testing.T, clock *fakeClock) sessions.System {
	t.Helper()
	cfg := &sessions.Config{}
	require.NoError(t, cfg.Finalize(nil))

	var opts []sessions.Option
	if clock != nil {
		opts = append(opts, sessions.WithClock(clock.Now))
	}
	return sessions.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
}

// newServer wires the session middleware in front of the session routes plus
// a probe endpoint that reports what the request saw.
func newServer(sys sessions.System) http.Handler {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	mux.HandleFunc("GET /probe", func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessions.FromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		s.WithStore(func(store *corrections.Store) {
			store.SaveOverride("IMG1", "", "x")
		})
		json.NewEncoder(w).Encode(map[string]any{
			"id":    s.ID(),
			"fresh": sessions.IsFresh(r.Context()),
		})
	})
	return sys.Middleware()(mux)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestMiddlewareCreatesSessionAndCookie(t *testing.T) {
	sys := newSystem(t, nil)
	srv := newServer(sys)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/probe", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	c := sessionCookie(t, rec, sys.CookieName())
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	_, err := uuid.Parse(c.Value)
	assert.NoError(t, err, "session id is a uuid")
	assert.Equal(t, 1, sys.Len())
}

func TestCookieRoundTripKeepsState(t *testing.T) {
	sys := newSystem(t, nil)
	srv := newServer(sys)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("POST", "/session/counter", nil))
	cookie := sessionCookie(t, rec, sys.CookieName())

	for range 2 {
		req := httptest.NewRequest("POST", "/session/counter", nil)
		req.AddCookie(cookie)
		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Empty(t, rec.Result().Cookies(), "existing session must not reissue the cookie")
	}

	var info sessions.Info
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, 3, info.Counter)
	assert.Equal(t, cookie.Value, info.UID)
	assert.False(t, info.Fresh)
	assert.Equal(t, 1, sys.Len())
}

func TestMissingCookieYieldsFreshSession(t *testing.T) {
	sys := newSystem(t, nil)
	srv := newServer(sys)

	ids := map[string]bool{}
	for range 3 {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest("GET", "/probe", nil))

		var body struct {
			ID    string `json:"id"`
			Fresh bool   `json:"fresh"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.True(t, body.Fresh)
		ids[body.ID] = true
	}

	assert.Len(t, ids, 3)
	assert.Equal(t, 3, sys.Len())
}

func TestUnknownCookieStartsNewSession(t *testing.T) {
	sys := newSystem(t, nil)
	srv := newServer(sys)

	req := httptest.NewRequest("GET", "/session", nil)
	req.AddCookie(&http.Cookie{Name: sys.CookieName(), Value: "stale"})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	c := sessionCookie(t, rec, sys.CookieName())
	assert.NotEqual(t, "stale", c.Value)

	var info sessions.Info
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.True(t, info.Fresh)
	assert.Zero(t, info.Counter)
}

func TestSessionsAreIsolated(t *testing.T) {
	sys := newSystem(t, nil)
	srv := newServer(sys)

	recA := httptest.NewRecorder()
	srv.ServeHTTP(recA, httptest.NewRequest("GET", "/probe", nil))
	recB := httptest.NewRecorder()
	srv.ServeHTTP(recB, httptest.NewRequest("GET", "/session", nil))

	a, ok := sys.Lookup(sessionCookie(t, recA, sys.CookieName()).Value)
	require.True(t, ok)
	b, ok := sys.Lookup(sessionCookie(t, recB, sys.CookieName()).Value)
	require.True(t, ok)

	a.WithStore(func(s *corrections.Store) {
		assert.Equal(t, []string{"IMG1"}, s.ListOverrideKeys())
	})
	b.WithStore(func(s *corrections.Store) {
		assert.Empty(t, s.ListOverrideKeys())
	})
}

func TestResetExpiresCookie(t *testing.T) {
	sys := newSystem(t, nil)
	srv := newServer(sys)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/session", nil))
	cookie := sessionCookie(t, rec, sys.CookieName())

	req := httptest.NewRequest("DELETE", "/session", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	expired := sessionCookie(t, rec, sys.CookieName())
	assert.Less(t, expired.MaxAge, 0)
	assert.Zero(t, sys.Len())
	assert.False(t, sys.Reset(cookie.Value), "second reset reports absence")
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	clock := newClock()
	sys := newSystem(t, clock)
	srv := newServer(sys)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/session", nil))
	active := sessionCookie(t, rec, sys.CookieName())

	clock.Advance(10 * time.Minute)
	srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/session", nil))
	require.Equal(t, 2, sys.Len())

	clock.Advance(25 * time.Minute)
	req := httptest.NewRequest("GET", "/session", nil)
	req.AddCookie(active)
	srv.ServeHTTP(httptest.NewRecorder(), req)

	// the first session was touched just now; the second has been idle 25m
	assert.Equal(t, 0, sys.Sweep())

	clock.Advance(10 * time.Minute)
	assert.Equal(t, 1, sys.Sweep(), "second session idle 35m")

	_, ok := sys.Lookup(active.Value)
	assert.True(t, ok)
}

func TestSweeperStopsOnShutdown(t *testing.T) {
	cfg := &sessions.Config{SweepInterval: "5ms", IdleTimeout: "1ms"}
	require.NoError(t, cfg.Finalize(nil))
	sys := sessions.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	srv := newServer(sys)
	srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/session", nil))
	require.Equal(t, 1, sys.Len())

	lc := lifecycle.New()
	require.NoError(t, sys.Start(lc))
	lc.WaitForStartup()

	require.Eventually(t, func() bool { return sys.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, lc.Shutdown(time.Second))
}

func TestNoSessionBound(t *testing.T) {
	sys := newSystem(t, nil)
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/session", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	_, err := sessions.Owner(httptest.NewRequest("GET", "/", nil))
	assert.ErrorIs(t, err, sessions.ErrNoSession)
}

func TestConcurrentUpdatesSerialize(t *testing.T) {
	sys := newSystem(t, nil)
	srv := newServer(sys)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/session", nil))
	cookie := sessionCookie(t, rec, sys.CookieName())

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			req := httptest.NewRequest("POST", "/session/counter", nil)
			req.AddCookie(cookie)
			srv.ServeHTTP(httptest.NewRecorder(), req)
		})
	}
	wg.Wait()

	s, ok := sys.Lookup(cookie.Value)
	require.True(t, ok)
	s.Update(func(st *sessions.State) {
		assert.Equal(t, 50, st.Counter)
	})
}

func TestStateFlash(t *testing.T) {
	var st sessions.State
	st.SetFlash(sessions.FlashSuccess, "Override updated.")

	assert.Equal(t, sessions.Flash{Level: sessions.FlashSuccess, Message: "Override updated."}, st.TakeFlash())
	assert.Zero(t, st.TakeFlash(), "flash is one-shot")
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := &sessions.Config{}
		require.NoError(t, cfg.Finalize(nil))
		assert.Equal(t, "statecheck_session", cfg.CookieName)
		assert.Equal(t, 30*time.Minute, cfg.IdleTimeoutDuration())
		assert.Equal(t, time.Minute, cfg.SweepIntervalDuration())
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_SESSION_COOKIE", "probe")
		t.Setenv("TEST_SESSION_SECURE", "true")
		t.Setenv("TEST_SESSION_IDLE", "5m")

		cfg := &sessions.Config{}
		require.NoError(t, cfg.Finalize(&sessions.Env{
			CookieName:  "TEST_SESSION_COOKIE",
			Secure:      "TEST_SESSION_SECURE",
			IdleTimeout: "TEST_SESSION_IDLE",
		}))
		assert.Equal(t, "probe", cfg.CookieName)
		assert.True(t, cfg.Secure)
		assert.Equal(t, 5*time.Minute, cfg.IdleTimeoutDuration())
	})

	t.Run("invalid values", func(t *testing.T) {
		for _, cfg := range []*sessions.Config{
			{CookieName: "bad name"},
			{IdleTimeout: "soon"},
			{IdleTimeout: "-1m"},
			{SweepInterval: "0s"},
		} {
			assert.Error(t, cfg.Finalize(nil))
		}
	})
}
