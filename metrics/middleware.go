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

package metrics

import (
	"strings"
	"time"

	"github.com/rivaas-dev/basic-auth-service/router"
)

// unmatchedRoute labels requests that matched no route, keeping label
// cardinality bounded.
const unmatchedRoute = "unmatched"

// MiddlewareOption configures [Middleware].
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	excludePaths    map[string]bool
	excludePrefixes []string
}

// WithExcludePaths skips exact paths, e.g. the metrics endpoint itself.
func WithExcludePaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		for _, p := range paths {
			c.excludePaths[p] = true
		}
	}
}

// WithExcludePrefixes skips every path starting with one of prefixes.
func WithExcludePrefixes(prefixes ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.excludePrefixes = append(c.excludePrefixes, prefixes...)
	}
}

type statusWriter interface {
	StatusCode() int
}

// Middleware records request metrics. Requests are labeled with the route
// pattern rather than the raw path.
func Middleware(rec *Recorder, opts ...MiddlewareOption) router.HandlerFunc {
	cfg := &middlewareConfig{excludePaths: make(map[string]bool)}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		if cfg.excluded(c.Request.URL.Path) {
			c.Next()
			return
		}

		rec.inFlight.Inc()
		defer rec.inFlight.Dec()

		start := time.Now()
		c.Next()

		status := 200
		if sw, ok := c.Response.(statusWriter); ok {
			status = sw.StatusCode()
		}
		route := c.RoutePattern()
		if route == "" {
			route = unmatchedRoute
		}
		rec.RecordRequest(c.Request.Method, route, status, time.Since(start))
	}
}

func (c *middlewareConfig) excluded(path string) bool {
	if c.excludePaths[path] {
		return true
	}
	for _, prefix := range c.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
