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

package basicauth

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rivaas-dev/basic-auth-service/middleware"
	"github.com/rivaas-dev/basic-auth-service/router"
)

// State is the position of a request in the authentication decision.
type State int

const (
	// NoCredentials means the request carried no usable Basic credentials.
	NoCredentials State = iota
	// CredentialsPresent means a username and password were decoded but not
	// yet checked.
	CredentialsPresent
	// Valid means the validator accepted the credentials.
	Valid
	// Invalid means the validator rejected the credentials or failed.
	Invalid
)

// String returns the lower-case state name, suitable as a metric label.
func (s State) String() string {
	switch s {
	case NoCredentials:
		return "no_credentials"
	case CredentialsPresent:
		return "credentials_present"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Option defines functional options for basicauth middleware configuration.
type Option func(*config)

// config holds the configuration for the basicauth middleware.
type config struct {
	// realm is the authentication realm shown to the user
	realm string

	validator           Validator
	unauthorizedHandler router.HandlerFunc

	// skipPaths are paths that should bypass authentication
	skipPaths map[string]bool

	reporter func(State)
	logger   *slog.Logger
}

// defaultConfig returns the default configuration for basicauth middleware.
func defaultConfig() *config {
	return &config{
		realm:               "Restricted",
		validator:           Deny(),
		unauthorizedHandler: defaultUnauthorizedHandler,
		skipPaths:           make(map[string]bool),
	}
}

// defaultUnauthorizedHandler sends a bare 401 Unauthorized.
func defaultUnauthorizedHandler(c *router.Context) {
	c.Status(http.StatusUnauthorized)
}

// New returns a middleware that implements HTTP Basic Authentication (RFC 7617).
//
// Security considerations:
//   - Basic Auth transmits credentials in base64, TLS is expected in front
//   - Credentials are never cached; every request is validated
//   - Validator errors are logged and answered like a rejection
//
// Basic usage with static users:
//
//	r := router.New()
//	r.Use(basicauth.New(
//	    basicauth.WithUsers(map[string]string{
//	        "admin": "secretpass",
//	    }),
//	))
//
// Protect a route group:
//
//	validator, err := credentials.NewStoreValidator(store, bcrypt.DefaultCost)
//	...
//	check := r.Group("/auth-check", basicauth.New(
//	    basicauth.WithValidator(validator),
//	))
//	check.Handle("", okHandler)
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	// Pre-compute the WWW-Authenticate header
	authenticateHeader := `Basic realm="` + cfg.realm + `"`

	deny := func(c *router.Context, state State) {
		cfg.report(state)
		c.Response.Header().Set("WWW-Authenticate", authenticateHeader)
		cfg.unauthorizedHandler(c)
		c.Abort()
	}

	return func(c *router.Context) {
		if cfg.skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		username, password, ok := parseAuthorization(c.Request.Header.Get("Authorization"))
		if !ok {
			deny(c, NoCredentials)
			return
		}

		// CredentialsPresent
		valid, err := cfg.validator.IsValid(c.Request.Context(), username, password)
		if err != nil {
			cfg.loggerFor(c).ErrorContext(c.Request.Context(), "credential validation failed",
				"username", username,
				"error", err,
			)
			valid = false
		}
		if !valid {
			deny(c, Invalid)
			return
		}

		cfg.report(Valid)
		ctx := context.WithValue(c.Request.Context(), middleware.AuthUsernameKey, username)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// parseAuthorization extracts the credentials of a Basic Authorization
// header. The scheme is matched case-insensitively.
func parseAuthorization(header string) (username, password string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return "", "", false
	}

	username, password, ok = strings.Cut(string(decoded), ":")
	if !ok {
		return "", "", false
	}
	return username, password, true
}

func (cfg *config) report(state State) {
	if cfg.reporter != nil {
		cfg.reporter(state)
	}
}

func (cfg *config) loggerFor(c *router.Context) *slog.Logger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return c.Logger()
}

// Username returns the authenticated username, or "" when the request did
// not pass through the gate.
//
// Example:
//
//	func handler(c *router.Context) {
//	    _ = c.JSON(http.StatusOK, map[string]string{"user": basicauth.Username(c)})
//	}
func Username(c *router.Context) string {
	if username, ok := c.Request.Context().Value(middleware.AuthUsernameKey).(string); ok {
		return username
	}
	return ""
}
