// Package router is a thin routing layer over net/http's pattern mux. It
// adds versioned base paths, route groups, and middleware chaining at the
// global, group and route level.
package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Middleware wraps a handler.
type Middleware func(next http.Handler) http.Handler

// Route is one method + path registration.
type Route struct {
	Method      string
	Path        string
	Handler     http.HandlerFunc
	Middlewares []Middleware
}

// RouterConfig configures path construction.
type RouterConfig struct {
	// BasePath prefixes every versioned route, e.g. "/api".
	BasePath string

	// Version sits between the base path and route paths, e.g. "v1".
	Version string

	Logger *slog.Logger
}

// Router collects routes and produces an http.Handler.
type Router struct {
	config      *RouterConfig
	logger      *slog.Logger
	mux         *http.ServeMux
	middlewares []Middleware
	registered  map[string]bool
}

// New creates a Router.
func New(config *RouterConfig) *Router {
	if config == nil {
		config = &RouterConfig{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		config:     config,
		logger:     logger,
		mux:        http.NewServeMux(),
		registered: make(map[string]bool),
	}
}

// Use appends middlewares applied to every route registered afterwards.
func (r *Router) Use(mw ...Middleware) {
	r.middlewares = append(r.middlewares, mw...)
}

// preparePath joins the base path, version and route path.
func (r *Router) preparePath(path string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.config.BasePath, r.config.Version, path} {
		p = strings.Trim(p, "/")
		if p != "" {
			parts = append(parts, p)
		}
	}
	return "/" + strings.Join(parts, "/")
}

// Register adds one route under the versioned base path.
func (r *Router) Register(route Route) {
	full := r.preparePath(route.Path)
	r.handle(route.Method, full, route.Handler, route.Middlewares)
}

// RegisterRaw adds a route outside the versioned base path, for operational
// endpoints like health probes and metrics.
func (r *Router) RegisterRaw(method, path string, handler http.Handler) {
	r.handle(method, path, handler.ServeHTTP, nil)
}

func (r *Router) handle(method, path string, handler http.HandlerFunc, routeMW []Middleware) {
	pattern := method + " " + path
	if r.registered[pattern] {
		r.logger.Error("duplicate route registration", "pattern", pattern)
		panic(fmt.Sprintf("router: duplicate route %s", pattern))
	}
	r.registered[pattern] = true

	h := http.Handler(handler)
	h = chain(h, routeMW)
	h = chain(h, r.middlewares)

	r.mux.Handle(pattern, h)
	r.logger.Debug("route registered", "pattern", pattern)
}

// chain wraps h in the given middlewares so the first listed runs first.
func chain(h http.Handler, mw []Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Group registers routes that share a path prefix and middlewares.
type Group struct {
	router      *Router
	prefix      string
	middlewares []Middleware
}

// Group creates a route group under the given prefix.
func (r *Router) Group(prefix string, mw ...Middleware) *Group {
	return &Group{
		router:      r,
		prefix:      strings.Trim(prefix, "/"),
		middlewares: mw,
	}
}

// Register adds a route to the group. Group middlewares run before the
// route's own.
func (g *Group) Register(route Route) {
	path := route.Path
	if g.prefix != "" {
		path = "/" + g.prefix + "/" + strings.TrimPrefix(path, "/")
	}

	mw := make([]Middleware, 0, len(g.middlewares)+len(route.Middlewares))
	mw = append(mw, g.middlewares...)
	mw = append(mw, route.Middlewares...)

	g.router.Register(Route{
		Method:      route.Method,
		Path:        path,
		Handler:     route.Handler,
		Middlewares: mw,
	})
}

// Handler returns the composed http.Handler.
func (r *Router) Handler() http.Handler {
	return r.mux
}
