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

// Package requestid provides middleware that assigns every request an id for
// log correlation. Ids are UUID v7 by default or ULID on request; both sort by
// creation time.
package requestid

import (
	"context"
	"crypto/rand"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/rivaas-dev/basic-auth-service/middleware"
	"github.com/rivaas-dev/basic-auth-service/router"
)

// Option defines functional options for requestid middleware configuration.
type Option func(*config)

// config holds the configuration for the requestid middleware.
type config struct {
	// headerName is the name of the header to use for the request ID
	headerName string

	// generator is the function used to generate new request IDs
	generator func() string

	// allowClientID allows using request IDs provided by clients
	allowClientID bool
}

func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     generateUUIDv7,
		allowClientID: true,
	}
}

func generateUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func generateULID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// WithHeader sets the header name for the request ID.
// Default: "X-Request-ID"
func WithHeader(headerName string) Option {
	return func(cfg *config) {
		cfg.headerName = headerName
	}
}

// WithULID uses ULID for request ID generation instead of UUID v7.
//
// ULID format: 01ARZ3NDEKTSV4RRFFQ69G5FAV (26 characters)
// UUID v7 format: 018f3e9a-1b2c-7def-8000-abcdef123456 (36 characters)
func WithULID() Option {
	return func(cfg *config) {
		cfg.generator = generateULID
	}
}

// WithGenerator sets a custom function to generate request IDs.
func WithGenerator(generator func() string) Option {
	return func(cfg *config) {
		if generator != nil {
			cfg.generator = generator
		}
	}
}

// WithAllowClientID controls whether to accept request IDs from clients.
// Default: true
func WithAllowClientID(allow bool) Option {
	return func(cfg *config) {
		cfg.allowClientID = allow
	}
}

// New returns a middleware that adds a unique request ID to each request.
//
// The id is taken from the request header when client ids are allowed and
// generated otherwise. It is echoed in the response header, stored in the
// request context and attached to the request logger as "request_id".
//
// Example:
//
//	r := router.New()
//	r.Use(requestid.New(requestid.WithULID()))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		var requestID string
		if cfg.allowClientID {
			requestID = c.Request.Header.Get(cfg.headerName)
		}
		if requestID == "" {
			requestID = cfg.generator()
		}

		c.Response.Header().Set(cfg.headerName, requestID)

		ctx := context.WithValue(c.Request.Context(), middleware.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.SetLogger(c.Logger().With("request_id", requestID))

		c.Next()
	}
}

// Get retrieves the request ID from the context.
// Returns an empty string if no request ID has been set.
func Get(c *router.Context) string {
	return FromContext(c.Request.Context())
}

// FromContext retrieves the request ID from ctx.
func FromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(middleware.RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
