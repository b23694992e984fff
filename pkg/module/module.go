// Package module mounts prefix-scoped HTTP handlers, each with its own
// middleware stack, behind a single top-level router.
package module

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/JaimeStill/statecheck/pkg/middleware"
)

// Module owns every path under a single-segment prefix such as "/api". The
// inner handler sees paths with the prefix removed.
type Module struct {
	prefix     string
	inner      http.Handler
	middleware middleware.System

	once    sync.Once
	wrapped http.Handler
}

// New creates a Module for prefix. Panics unless prefix is a single path
// segment with a leading slash.
func New(prefix string, inner http.Handler) *Module {
	if err := checkPrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		inner:      inner,
		middleware: middleware.New(),
	}
}

// Prefix returns the path segment the module owns.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends mw to the module's middleware. All calls must happen before
// the first request; the stack is composed once.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

// Handler returns the inner handler wrapped in the module's middleware.
func (m *Module) Handler() http.Handler {
	m.once.Do(func() {
		m.wrapped = m.middleware.Apply(m.inner)
	})
	return m.wrapped
}

// Serve dispatches req to the inner handler with the prefix removed. A
// trailing slash is dropped, so "/app/" and "/app" both arrive as "/".
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, withPath(req, innerPath(req.URL.Path, m.prefix)))
}

func withPath(req *http.Request, path string) *http.Request {
	u := *req.URL
	u.Path = path
	u.RawPath = ""

	out := req.Clone(req.Context())
	out.URL = &u
	return out
}

func innerPath(full, prefix string) string {
	path := strings.TrimPrefix(full, prefix)
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}

func checkPrefix(prefix string) error {
	switch {
	case prefix == "" || prefix == "/":
		return fmt.Errorf("module prefix must name a path segment: %q", prefix)
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Contains(prefix[1:], "/"):
		return fmt.Errorf("module prefix must be a single segment: %s", prefix)
	}
	return nil
}
