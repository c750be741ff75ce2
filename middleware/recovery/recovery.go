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

// Package recovery provides middleware for recovering from panics in HTTP
// handlers. A recovered panic is logged, recorded on the active trace span,
// and answered with a 500 InternalServerError that carries no panic detail.
package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rivaas-dev/basic-auth-service/errors"
	"github.com/rivaas-dev/basic-auth-service/router"
)

// Option defines functional options for recovery middleware configuration.
type Option func(*config)

// config holds the configuration for the recovery middleware.
type config struct {
	// stackTrace enables/disables logging stack traces on panic
	stackTrace bool

	// stackSize sets the maximum size of the stack trace in bytes
	stackSize int

	// logger is the logger function for panic messages
	logger func(c *router.Context, err any, stack []byte)

	// handler writes the response after a panic
	handler func(c *router.Context, err any)

	formatter errors.Formatter
}

func defaultConfig() *config {
	cfg := &config{
		stackTrace: true,
		stackSize:  4 << 10, // 4KB
		logger:     defaultLogger,
		formatter:  errors.NewSimple(),
	}
	cfg.handler = cfg.defaultHandler
	return cfg
}

func defaultLogger(c *router.Context, err any, stack []byte) {
	c.Logger().ErrorContext(c.Request.Context(), "panic recovered",
		"panic", fmt.Sprintf("%v", err),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"stack", string(stack),
	)
}

func (cfg *config) defaultHandler(c *router.Context, err any) {
	if rw, ok := c.Response.(interface{ Written() bool }); ok && rw.Written() {
		return
	}
	cause, ok := err.(error)
	if !ok {
		cause = fmt.Errorf("panic: %v", err)
	}
	_ = errors.Write(c.Response, c.Request, cfg.formatter, errors.Internal(cause))
}

// WithStackTrace enables or disables stack trace logging.
// Default: true
func WithStackTrace(enabled bool) Option {
	return func(cfg *config) {
		cfg.stackTrace = enabled
	}
}

// WithStackSize sets the maximum size of the logged stack trace in bytes.
// Default: 4KB (4 << 10)
func WithStackSize(size int) Option {
	return func(cfg *config) {
		cfg.stackSize = size
	}
}

// WithLogger sets a custom logger function for panic messages.
//
// Example:
//
//	recovery.New(recovery.WithLogger(func(c *router.Context, err any, stack []byte) {
//	    myLogger.Error("panic recovered", "error", err, "stack", string(stack))
//	}))
func WithLogger(logger func(c *router.Context, err any, stack []byte)) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithHandler sets a custom recovery handler responsible for the response.
func WithHandler(handler func(c *router.Context, err any)) Option {
	return func(cfg *config) {
		if handler != nil {
			cfg.handler = handler
		}
	}
}

// WithFormatter sets the formatter used by the default handler.
func WithFormatter(f errors.Formatter) Option {
	return func(cfg *config) {
		if f != nil {
			cfg.formatter = f
		}
	}
}

// New returns a middleware that recovers from panics in request handlers.
// Register it first so it covers every later handler.
//
// Example:
//
//	r := router.New()
//	r.Use(recovery.New(recovery.WithStackSize(8 << 10)))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
				panic(err)
			}

			// exception.escaped is only ever set here
			if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
				span.SetStatus(codes.Error, "panic recovered")
				span.SetAttributes(
					attribute.Bool("exception.escaped", true),
					attribute.String("exception.type", fmt.Sprintf("%T", err)),
					attribute.String("exception.message", fmt.Sprintf("%v", err)),
				)
				if actualErr, ok := err.(error); ok {
					span.RecordError(actualErr)
				}
			}

			var stack []byte
			if cfg.stackTrace {
				stack = debug.Stack()
				if len(stack) > cfg.stackSize {
					stack = stack[:cfg.stackSize]
				}
			}

			if cfg.logger != nil {
				cfg.logger(c, err, stack)
			}

			c.Abort()
			cfg.handler(c, err)
		}()

		c.Next()
	}
}
