// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// ErrRouteNotFound is returned by [Router.URLFor] for unknown route names.
var ErrRouteNotFound = errors.New("route not found")

// noopLogger is used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Option defines functional options for router configuration.
type Option func(*Router)

// Registrar is implemented by [Router] and [Group]. It lets components
// register their own routes without caring where they are mounted.
type Registrar interface {
	Handle(path string, handlers ...HandlerFunc) *Route
}

// Router dispatches HTTP requests to handler chains.
type Router struct {
	mux              *mux.Router
	middleware       []HandlerFunc
	notFound         HandlerFunc
	methodNotAllowed HandlerFunc
	logger           *slog.Logger
}

// WithLogger sets the logger returned by [Context.Logger].
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithNotFound sets the handler used when no route matches.
// Global middleware still runs before it.
func WithNotFound(handler HandlerFunc) Option {
	return func(r *Router) {
		if handler != nil {
			r.notFound = handler
		}
	}
}

// WithMethodNotAllowed sets the handler used when a method-restricted route
// (registered with GET) matches the path but not the method.
func WithMethodNotAllowed(handler HandlerFunc) Option {
	return func(r *Router) {
		if handler != nil {
			r.methodNotAllowed = handler
		}
	}
}

// New creates a router.
func New(opts ...Option) *Router {
	r := &Router{
		mux:              mux.NewRouter(),
		notFound:         defaultNotFound,
		methodNotAllowed: defaultMethodNotAllowed,
		logger:           noopLogger,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.mux.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.serve(w, req, "_not_found", r.withGlobal(r.notFound))
	})
	r.mux.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.serve(w, req, "_method_not_allowed", r.withGlobal(r.methodNotAllowed))
	})

	return r
}

func defaultNotFound(c *Context) {
	c.WriteErrorResponse(http.StatusNotFound, "Not Found")
}

func defaultMethodNotAllowed(c *Context) {
	c.WriteErrorResponse(http.StatusMethodNotAllowed, "Method Not Allowed")
}

// Use appends global middleware. It runs for every matched route and for the
// not-found handler, in registration order.
func (r *Router) Use(middleware ...HandlerFunc) {
	r.middleware = append(r.middleware, middleware...)
}

// Handle registers handlers for path. The route matches any HTTP method.
//
// Path variables use gorilla/mux syntax, e.g. "/users/{id}".
func (r *Router) Handle(path string, handlers ...HandlerFunc) *Route {
	return r.addRoute(nil, path, nil, handlers, false)
}

// HandlePrefix registers handlers for every path starting with prefix, for
// any HTTP method. Routes registered earlier take precedence, so register
// subtree routes last.
func (r *Router) HandlePrefix(prefix string, handlers ...HandlerFunc) *Route {
	return r.addRoute(nil, prefix, nil, handlers, true)
}

// GET registers handlers for GET requests on path.
func (r *Router) GET(path string, handlers ...HandlerFunc) *Route {
	return r.addRoute(nil, path, []string{http.MethodGet}, handlers, false)
}

// Mount serves h at path. Global middleware runs before h.
func (r *Router) Mount(path string, h http.Handler) *Route {
	return r.addRoute(nil, path, nil, []HandlerFunc{WrapHandler(h)}, false)
}

// Group creates a route group sharing prefix and middleware.
//
// Example:
//
//	admin := r.Group("/admin", basicauth.New(basicauth.WithUsers(users)))
//	admin.Handle("/stats", statsHandler)
func (r *Router) Group(prefix string, middleware ...HandlerFunc) *Group {
	return &Group{
		router:     r,
		prefix:     prefix,
		middleware: middleware,
	}
}

// URLFor builds the path of the named route, substituting params into its
// path variables.
//
// Example:
//
//	r.Handle("/users/{id}", showUser).Name("users.instance")
//	url, err := r.URLFor("users.instance", map[string]string{"id": "alice"})
//	// url == "/users/alice"
func (r *Router) URLFor(name string, params map[string]string) (string, error) {
	route := r.mux.Get(name)
	if route == nil {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}

	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, k, v)
	}

	u, err := route.URLPath(pairs...)
	if err != nil {
		return "", fmt.Errorf("building url for route %s: %w", name, err)
	}

	return u.String(), nil
}

// ServeHTTP implements [http.Handler].
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) addRoute(g *Group, path string, methods []string, handlers []HandlerFunc, subtree bool) *Route {
	pattern := path
	if g != nil {
		pattern = g.fullPrefix() + path
	}
	if pattern == "" {
		pattern = "/"
	}

	var muxRoute *mux.Route
	if subtree {
		muxRoute = r.mux.PathPrefix(pattern)
		pattern += "*"
	} else {
		muxRoute = r.mux.Path(pattern)
	}

	rt := &Route{
		router:   r,
		group:    g,
		pattern:  pattern,
		handlers: handlers,
	}

	if len(methods) > 0 {
		muxRoute = muxRoute.Methods(methods...)
	}
	muxRoute.Handler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.serve(w, req, pattern, rt.chain())
	}))
	rt.route = muxRoute

	return rt
}

func (r *Router) withGlobal(handlers ...HandlerFunc) []HandlerFunc {
	chain := make([]HandlerFunc, 0, len(r.middleware)+len(handlers))
	chain = append(chain, r.middleware...)
	return append(chain, handlers...)
}

func (r *Router) serve(w http.ResponseWriter, req *http.Request, pattern string, handlers []HandlerFunc) {
	rw, ok := w.(*responseWriter)
	if !ok {
		rw = &responseWriter{ResponseWriter: w}
	}

	c := &Context{
		Request:      req,
		Response:     rw,
		handlers:     handlers,
		router:       r,
		index:        -1,
		params:       mux.Vars(req),
		routePattern: pattern,
	}
	c.Next()
}

// WrapHandler adapts a plain [http.Handler] to a [HandlerFunc].
func WrapHandler(h http.Handler) HandlerFunc {
	return func(c *Context) {
		h.ServeHTTP(c.Response, c.Request)
	}
}

// Route is a registered route.
type Route struct {
	router   *Router
	group    *Group
	pattern  string
	handlers []HandlerFunc
	route    *mux.Route
}

// Name names the route so it can be reversed with [Router.URLFor].
func (rt *Route) Name(name string) *Route {
	rt.route.Name(name)
	return rt
}

// Pattern returns the full path pattern of the route.
func (rt *Route) Pattern() string {
	return rt.pattern
}

// chain builds the handler chain at request time so middleware added to the
// router or a group after the route was registered still applies.
func (rt *Route) chain() []HandlerFunc {
	var groupMiddleware []HandlerFunc
	if rt.group != nil {
		groupMiddleware = rt.group.allMiddleware()
	}

	chain := make([]HandlerFunc, 0, len(rt.router.middleware)+len(groupMiddleware)+len(rt.handlers))
	chain = append(chain, rt.router.middleware...)
	chain = append(chain, groupMiddleware...)
	return append(chain, rt.handlers...)
}

// Group is a set of routes sharing a path prefix and middleware.
type Group struct {
	router     *Router
	parent     *Group
	prefix     string
	middleware []HandlerFunc
}

// Use appends middleware to the group.
func (g *Group) Use(middleware ...HandlerFunc) {
	g.middleware = append(g.middleware, middleware...)
}

// Group creates a nested group.
func (g *Group) Group(prefix string, middleware ...HandlerFunc) *Group {
	return &Group{
		router:     g.router,
		parent:     g,
		prefix:     prefix,
		middleware: middleware,
	}
}

// Handle registers handlers for prefix+path, matching any HTTP method.
func (g *Group) Handle(path string, handlers ...HandlerFunc) *Route {
	return g.router.addRoute(g, path, nil, handlers, false)
}

// HandlePrefix registers handlers for every path starting with prefix+path,
// matching any HTTP method. Group middleware runs before them, which makes a
// catch-all registered with path "/" answer unknown paths of the group after
// the group's own checks.
func (g *Group) HandlePrefix(path string, handlers ...HandlerFunc) *Route {
	return g.router.addRoute(g, path, nil, handlers, true)
}

// GET registers handlers for GET requests on prefix+path.
func (g *Group) GET(path string, handlers ...HandlerFunc) *Route {
	return g.router.addRoute(g, path, []string{http.MethodGet}, handlers, false)
}

func (g *Group) fullPrefix() string {
	prefix := strings.TrimSuffix(g.prefix, "/")
	if g.parent != nil {
		return g.parent.fullPrefix() + prefix
	}
	return prefix
}

func (g *Group) allMiddleware() []HandlerFunc {
	if g.parent == nil {
		return g.middleware
	}
	parent := g.parent.allMiddleware()
	all := make([]HandlerFunc, 0, len(parent)+len(g.middleware))
	all = append(all, parent...)
	return append(all, g.middleware...)
}
