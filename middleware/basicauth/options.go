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
	"log/slog"

	"github.com/rivaas-dev/basic-auth-service/router"
)

// WithRealm sets the authentication realm sent in the challenge.
// Default: "Restricted"
//
// Example:
//
//	basicauth.New(basicauth.WithRealm("Admin Area"))
func WithRealm(realm string) Option {
	return func(cfg *config) {
		cfg.realm = realm
	}
}

// WithValidator sets the credential validator.
//
// Example:
//
//	basicauth.New(basicauth.WithValidator(basicauth.ValidatorFunc(
//	    func(ctx context.Context, username, password string) (bool, error) {
//	        return store.Check(ctx, username, password)
//	    },
//	)))
func WithValidator(v Validator) Option {
	return func(cfg *config) {
		cfg.validator = v
	}
}

// WithUsers validates against a static username to password table.
// It replaces any validator set before.
//
// Example:
//
//	basicauth.New(basicauth.WithUsers(map[string]string{"admin": "secret"}))
func WithUsers(users map[string]string) Option {
	return func(cfg *config) {
		cfg.validator = Users(users)
	}
}

// WithSkipPaths lets requests to the given exact paths through without
// authentication.
//
// Example:
//
//	basicauth.New(basicauth.WithSkipPaths("/auth-check/ping"))
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}

// WithUnauthorizedHandler replaces the default 401 writer. The challenge
// header is already set when the handler runs.
func WithUnauthorizedHandler(handler router.HandlerFunc) Option {
	return func(cfg *config) {
		if handler != nil {
			cfg.unauthorizedHandler = handler
		}
	}
}

// WithReporter registers a callback receiving the terminal state of every
// authenticated request ([NoCredentials], [Valid] or [Invalid]).
//
// Example:
//
//	basicauth.New(basicauth.WithReporter(func(s basicauth.State) {
//	    authChecks.WithLabelValues(s.String()).Inc()
//	}))
func WithReporter(report func(State)) Option {
	return func(cfg *config) {
		cfg.reporter = report
	}
}

// WithLogger sets the logger used for validator failures.
// Defaults to the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}
