package routes

import "net/http"

// Group organizes routes under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Mux is the registration surface shared by http.ServeMux and web.Router.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// Register adds all routes from the given groups to the mux.
func Register(mux Mux, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", group)
	}
}

// Patterns lists the ServeMux patterns a group registers, in registration order.
func (g Group) Patterns() []string {
	var out []string
	collect(&out, "", g)
	return out
}

func registerGroup(mux Mux, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		mux.Handle(route.pattern(fullPrefix), route.Handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, fullPrefix, child)
	}
}

func collect(out *[]string, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		*out = append(*out, route.pattern(fullPrefix))
	}
	for _, child := range group.Children {
		collect(out, fullPrefix, child)
	}
}
