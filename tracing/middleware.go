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

package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/rivaas-dev/basic-auth-service/router"
)

type statusWriter interface {
	StatusCode() int
}

// Middleware starts a server span per request and stores it in the
// request context. Span names use the route pattern, and responses of 500
// and above mark the span as failed.
func Middleware(p *Provider, excludePaths ...string) router.HandlerFunc {
	tracer := p.Tracer()
	skip := make(map[string]bool, len(excludePaths))
	for _, path := range excludePaths {
		skip[path] = true
	}

	return func(c *router.Context) {
		req := c.Request
		if skip[req.URL.Path] {
			c.Next()
			return
		}

		ctx := p.propagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header))

		route := c.RoutePattern()
		ctx, span := tracer.Start(ctx, req.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", req.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", req.URL.Path),
				attribute.String("http.user_agent", req.UserAgent()),
			),
		)
		defer span.End()

		p.propagator.Inject(ctx, propagation.HeaderCarrier(c.Response.Header()))
		c.Request = req.WithContext(ctx)
		c.Next()

		status := 200
		if sw, ok := c.Response.(statusWriter); ok {
			status = sw.StatusCode()
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}
