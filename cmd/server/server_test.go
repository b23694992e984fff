package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/statecheck/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv(config.EnvStatecheckEnv, "")
	t.Setenv(config.EnvStatecheckLogLevel, "error")

	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	return srv
}

func serve(srv *Server, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusOK, serve(srv, "GET", "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(srv, "GET", "/readyz").Code)

	require.NoError(t, srv.infra.Start())
	srv.infra.Lifecycle.WaitForStartup()
	assert.Equal(t, http.StatusOK, serve(srv, "GET", "/readyz").Code)

	require.NoError(t, srv.Shutdown(time.Second))
	assert.Equal(t, http.StatusServiceUnavailable, serve(srv, "GET", "/readyz").Code)
}

func TestRootRedirectsToApp(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, "GET", "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/app/", rec.Header().Get("Location"))
}

func TestModulesMounted(t *testing.T) {
	srv := newTestServer(t)

	rec := serve(srv, "GET", "/app/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.NotEmpty(t, rec.Result().Cookies())

	rec = serve(srv, "GET", "/api/session")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"fresh":true`)

	rec = serve(srv, "GET", "/api/corrections")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"keys":[],"count":0}`, rec.Body.String())
}
