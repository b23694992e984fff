package web

import "net/http"

// Router is a ServeMux whose unmatched page requests (GET or HEAD) render a
// fallback page instead of the mux's plain-text 404. Other methods keep the
// mux's own 404/405 responses.
type Router struct {
	mux      *http.ServeMux
	notFound http.Handler
}

// NewRouter creates a Router with no fallback.
func NewRouter() *Router {
	return &Router{mux: http.NewServeMux()}
}

// SetFallback sets the handler for unmatched page requests.
func (r *Router) SetFallback(handler http.HandlerFunc) {
	r.notFound = handler
}

// Handle registers handler for pattern.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// HandleFunc registers handler for pattern.
func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.mux.Handle(pattern, handler)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.notFound != nil && isPageRequest(req) {
		if _, pattern := r.mux.Handler(req); pattern == "" {
			r.notFound.ServeHTTP(w, req)
			return
		}
	}
	r.mux.ServeHTTP(w, req)
}

func isPageRequest(req *http.Request) bool {
	return req.Method == http.MethodGet || req.Method == http.MethodHead
}
