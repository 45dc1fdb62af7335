// Package router wraps http.ServeMux with per-route and per-group
// middleware chains.
package router

import (
	"net/http"
	"slices"
	"strings"
)

// Router wraps http.ServeMux with middleware chaining
type Router struct {
	mux    *http.ServeMux
	chain  []Middleware
	prefix string
}

// Middleware is a function that wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// New creates a new Router with optional global middleware
func New(middleware ...Middleware) *Router {
	return &Router{
		mux:   http.NewServeMux(),
		chain: middleware,
	}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) Get(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodGet, pattern, handler, middleware...)
}

func (r *Router) Post(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodPost, pattern, handler, middleware...)
}

func (r *Router) Put(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodPut, pattern, handler, middleware...)
}

func (r *Router) Delete(pattern string, handler http.HandlerFunc, middleware ...Middleware) {
	r.Handle(http.MethodDelete, pattern, handler, middleware...)
}

// Handle registers a route with explicit method. The pattern is relative to
// the router's prefix.
func (r *Router) Handle(method, pattern string, handler http.Handler, middleware ...Middleware) {
	r.mux.Handle(method+" "+r.prefix+pattern, r.wrap(handler, middleware))
}

// wrap applies middleware so that it runs in the order it was declared:
// global chain first, then route middleware.
func (r *Router) wrap(handler http.Handler, middleware []Middleware) http.Handler {
	combined := append(slices.Clone(r.chain), middleware...)
	slices.Reverse(combined)

	result := handler
	for _, m := range combined {
		result = m(result)
	}
	return result
}

// Group creates a sub-router with additional middleware
func (r *Router) Group(middleware ...Middleware) *Router {
	return &Router{
		mux:    r.mux,
		chain:  append(slices.Clone(r.chain), middleware...),
		prefix: r.prefix,
	}
}

// Route creates a sub-router whose patterns are mounted under prefix.
func (r *Router) Route(prefix string, middleware ...Middleware) *Router {
	g := r.Group(middleware...)
	g.prefix = r.prefix + strings.TrimSuffix(prefix, "/")
	return g
}

// Static serves files from a directory under the given route prefix
func (r *Router) Static(prefix, dir string) {
	cleanPrefix := r.prefix + strings.TrimSuffix(prefix, "/")
	handler := http.StripPrefix(cleanPrefix, http.FileServer(http.Dir(dir)))
	r.mux.Handle("GET "+cleanPrefix+"/{file...}", r.wrap(handler, nil))
}
