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

package recovery

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/rivaas-dev/basic-auth-service/router"
)

func TestRecovery_PanicBecomes500(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	r := router.New(router.WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))))
	r.Use(New())
	r.Handle("/panic", func(*router.Context) {
		panic("database password is hunter2")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "InternalServerError", body["error"])
	assert.Equal(t, "Internal server error", body["message"])

	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), "hunter2")
}

func TestRecovery_NoPanicPassesThrough(t *testing.T) {
	t.Parallel()

	r := router.New()
	r.Use(New())
	r.Handle("/ok", func(c *router.Context) { c.Status(http.StatusAccepted) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestRecovery_CustomHandlerAndLogger(t *testing.T) {
	t.Parallel()

	var logged any
	var stackLen int
	r := router.New()
	r.Use(New(
		WithStackSize(64),
		WithLogger(func(_ *router.Context, err any, stack []byte) {
			logged = err
			stackLen = len(stack)
		}),
		WithHandler(func(c *router.Context, _ any) {
			c.WriteErrorResponse(http.StatusServiceUnavailable, "try later")
		}),
	))
	r.Handle("/panic", func(*router.Context) { panic(42) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 42, logged)
	assert.LessOrEqual(t, stackLen, 64)
	assert.Positive(t, stackLen)
}

func TestRecovery_WithoutStackTrace(t *testing.T) {
	t.Parallel()

	stack := []byte("unset")
	r := router.New()
	r.Use(New(
		WithStackTrace(false),
		WithLogger(func(_ *router.Context, _ any, s []byte) { stack = s }),
	))
	r.Handle("/panic", func(*router.Context) { panic("boom") })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Nil(t, stack)
}

func TestRecovery_MarksSpan(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r := router.New()
	r.Use(func(c *router.Context) {
		ctx, span := tp.Tracer("test").Start(c.Request.Context(), "request")
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}, New(WithLogger(nil)))
	r.Handle("/panic", func(*router.Context) { panic("boom") })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/panic", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "panic recovered", spans[0].Status().Description)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "true", attrs["exception.escaped"])
	assert.Equal(t, "boom", attrs["exception.message"])
}
