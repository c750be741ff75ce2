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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// ErrContextResponseNil is returned when writing to a context without a
// response writer.
var ErrContextResponseNil = errors.New("context response is nil")

// HandlerFunc defines the handler function signature for route handlers and
// middleware.
//
// Example middleware:
//
//	func Timing() router.HandlerFunc {
//	    return func(c *router.Context) {
//	        start := time.Now()
//	        c.Next()
//	        c.Logger().Info("request done", "duration", time.Since(start))
//	    }
//	}
type HandlerFunc func(*Context)

// Context carries the request, the response writer and the position in the
// handler chain. A Context is only valid for the duration of one request.
type Context struct {
	Request  *http.Request
	Response http.ResponseWriter

	handlers     []HandlerFunc
	router       *Router
	index        int
	aborted      bool
	params       map[string]string
	routePattern string
	logger       *slog.Logger
}

// NewContext creates a context outside the normal request flow. It is
// mostly useful in tests.
func NewContext(w http.ResponseWriter, r *http.Request, handlers ...HandlerFunc) *Context {
	return &Context{
		Request:  r,
		Response: &responseWriter{ResponseWriter: w},
		handlers: handlers,
		index:    -1,
	}
}

// Next executes the remaining handlers in the chain.
// Execution stops when a handler calls [Context.Abort] or when the request
// context is done.
func (c *Context) Next() {
	c.index++
	for c.index < len(c.handlers) {
		if c.aborted {
			return
		}
		if err := c.Request.Context().Err(); err != nil {
			return
		}
		c.handlers[c.index](c)
		c.index++
	}
}

// Abort stops the chain from executing any further handlers.
func (c *Context) Abort() {
	c.aborted = true
}

// IsAborted reports whether [Context.Abort] was called.
func (c *Context) IsAborted() bool {
	return c.aborted
}

// Param returns the value of the path variable key, or "".
func (c *Context) Param(key string) string {
	return c.params[key]
}

// SetParams replaces the path variables. It is intended for tests that
// build a Context with [NewContext].
func (c *Context) SetParams(params map[string]string) {
	c.params = params
}

// Query returns the first value of the query parameter key.
func (c *Context) Query(key string) string {
	return c.Request.URL.Query().Get(key)
}

// Header sets a response header.
func (c *Context) Header(key, value string) {
	c.Response.Header().Set(key, value)
}

// Status writes the status code if nothing has been written yet.
func (c *Context) Status(code int) {
	if rw, ok := c.Response.(*responseWriter); ok && rw.Written() {
		return
	}
	c.Response.WriteHeader(code)
}

// JSON encodes obj and writes it with the given status code.
// Content-Type defaults to "application/json; charset=utf-8" unless a
// handler already set one.
func (c *Context) JSON(code int, obj any) error {
	var buf strings.Builder
	buf.Grow(256)

	if err := json.NewEncoder(&buf).Encode(obj); err != nil {
		return fmt.Errorf("JSON encoding failed for type %T: %w", obj, err)
	}

	if c.Response == nil {
		return ErrContextResponseNil
	}
	if c.Response.Header().Get("Content-Type") == "" {
		c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	c.Status(code)

	_, err := io.WriteString(c.Response, buf.String())
	return err
}

// NoContent writes a 204 response.
func (c *Context) NoContent() {
	c.Status(http.StatusNoContent)
}

// WriteErrorResponse writes a plain text error response.
func (c *Context) WriteErrorResponse(status int, message string) {
	if message != "" {
		c.Header("Content-Type", "text/plain; charset=utf-8")
	}
	c.Status(status)
	if message != "" {
		_, _ = io.WriteString(c.Response, message+"\n")
	}
}

// Router returns the router serving the request, or nil for contexts built
// with [NewContext].
func (c *Context) Router() *Router {
	return c.router
}

// URLFor builds the path of a named route. See [Router.URLFor].
func (c *Context) URLFor(name string, params map[string]string) (string, error) {
	if c.router == nil {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}
	return c.router.URLFor(name, params)
}

// RoutePattern returns the matched route pattern, e.g. "/users/{id}".
func (c *Context) RoutePattern() string {
	return c.routePattern
}

// Logger returns the request-scoped logger.
func (c *Context) Logger() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	if c.router != nil {
		return c.router.logger
	}
	return noopLogger
}

// SetLogger replaces the request-scoped logger, typically to attach fields
// such as the request id.
func (c *Context) SetLogger(logger *slog.Logger) {
	c.logger = logger
}
