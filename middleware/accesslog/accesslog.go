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

// Package accesslog provides structured access logging middleware.
//
// One record is written per request after the handler chain finishes, at
// info level for successes, warn for client errors and slow requests, and
// error for server errors.
package accesslog

import (
	"strings"
	"time"

	"github.com/rivaas-dev/basic-auth-service/middleware"
	"github.com/rivaas-dev/basic-auth-service/router"
)

// statusSizer is implemented by response writers that track status and size.
type statusSizer interface {
	StatusCode() int
	Size() int64
}

// New creates an access log middleware.
//
// Example:
//
//	r := router.New(router.WithLogger(logger))
//	r.Use(requestid.New(), accesslog.New(
//		accesslog.WithExcludePaths("/health", "/metrics"),
//		accesslog.WithSlowThreshold(500*time.Millisecond),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		path := c.Request.URL.Path

		if cfg.excluded(path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		status := 200
		var size int64
		if ss, ok := c.Response.(statusSizer); ok {
			status = ss.StatusCode()
			size = ss.Size()
		}

		isError := status >= 400
		isSlow := cfg.slowThreshold > 0 && duration >= cfg.slowThreshold
		if cfg.logErrorsOnly && !isError && !isSlow {
			return
		}

		logger := cfg.logger
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"bytes_sent", size,
			"user_agent", c.Request.UserAgent(),
			"remote_addr", c.Request.RemoteAddr,
			"proto", c.Request.Proto,
		}
		if logger == nil {
			// request logger already carries request_id
			logger = c.Logger()
		} else if rid, ok := c.Request.Context().Value(middleware.RequestIDKey).(string); ok {
			fields = append(fields, "request_id", rid)
		}

		if routePattern := c.RoutePattern(); routePattern != "" {
			fields = append(fields, "route", routePattern)
		}
		if isSlow {
			fields = append(fields, "slow", true)
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			logger.ErrorContext(ctx, "access", fields...)
		case isError, isSlow:
			logger.WarnContext(ctx, "access", fields...)
		default:
			logger.InfoContext(ctx, "access", fields...)
		}
	}
}

func (cfg *config) excluded(path string) bool {
	if cfg.excludePaths[path] {
		return true
	}
	for _, prefix := range cfg.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
