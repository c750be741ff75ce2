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

package accesslog

import (
	"log/slog"
	"time"
)

// Option defines functional options for access log middleware.
type Option func(*config)

// config holds access log configuration.
type config struct {
	// logger is the access logger; nil means the request logger
	logger *slog.Logger

	// excludePaths are exact paths to skip
	excludePaths map[string]bool

	// excludePrefixes are path prefixes to skip (e.g., "/metrics")
	excludePrefixes []string

	// logErrorsOnly only logs requests with status >= 400
	logErrorsOnly bool

	// slowThreshold forces logging of slow requests at warn level
	slowThreshold time.Duration
}

func defaultConfig() *config {
	return &config{
		excludePaths: make(map[string]bool),
	}
}

// WithExcludePaths skips logging for exact path matches.
//
// Example:
//
//	accesslog.New(
//		accesslog.WithExcludePaths("/health", "/metrics"),
//	)
func WithExcludePaths(paths ...string) Option {
	return func(c *config) {
		for _, path := range paths {
			c.excludePaths[path] = true
		}
	}
}

// WithExcludePrefixes skips logging for paths with given prefixes.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(c *config) {
		c.excludePrefixes = append(c.excludePrefixes, prefixes...)
	}
}

// WithErrorsOnly only logs requests with errors (status >= 400) and slow
// requests.
func WithErrorsOnly() Option {
	return func(c *config) {
		c.logErrorsOnly = true
	}
}

// WithSlowThreshold marks requests that take at least threshold as slow.
// Slow requests are always logged, at warn level.
//
// Example:
//
//	accesslog.New(
//		accesslog.WithSlowThreshold(500 * time.Millisecond),
//	)
func WithSlowThreshold(threshold time.Duration) Option {
	return func(c *config) {
		c.slowThreshold = threshold
	}
}

// WithLogger sets the slog.Logger for access logs.
// Without it the request logger ([router.Context.Logger]) is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
