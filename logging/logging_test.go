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

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{name: "default config"},
		{name: "json handler", opts: []Option{WithHandlerType(JSONHandler)}},
		{name: "text handler", opts: []Option{WithHandlerType(TextHandler)}},
		{name: "console handler", opts: []Option{WithHandlerType(ConsoleHandler)}},
		{name: "unknown handler", opts: []Option{WithHandlerType("xml")}, wantErr: ErrInvalidHandler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger, err := New(append(tt.opts, WithOutput(&buf))...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			logger.Info("hello", "key", "value")
			assert.Contains(t, buf.String(), "hello")
			assert.Contains(t, buf.String(), "value")
		})
	}
}

func TestNew_NilOutput(t *testing.T) {
	t.Parallel()

	_, err := New(WithOutput(nil))
	require.Error(t, err)
}

func TestJSONFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := MustNew(
		WithOutput(&buf),
		WithServiceName("basic-auth-service"),
		WithServiceVersion("1.2.3"),
	)
	logger.Info("started", "addr", ":8080")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "started", entry["msg"])
	assert.Equal(t, "basic-auth-service", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, ":8080", entry["addr"])
}

func TestRedaction(t *testing.T) {
	t.Parallel()

	for _, ht := range []HandlerType{JSONHandler, TextHandler, ConsoleHandler} {
		t.Run(string(ht), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := MustNew(WithOutput(&buf), WithHandlerType(ht))
			logger.Info("login",
				"password", "hunter2",
				"Authorization", "Basic dXNlcjpwYXNz",
				slog.Group("req", "token", "abc"),
				"username", "alice",
			)

			out := buf.String()
			assert.NotContains(t, out, "hunter2")
			assert.NotContains(t, out, "dXNlcjpwYXNz")
			assert.NotContains(t, out, "abc")
			assert.Contains(t, out, redacted)
			assert.Contains(t, out, "alice")
		})
	}
}

func TestLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	logger := MustNew(WithOutput(&buf), WithLevel(level))

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	level.Set(slog.LevelDebug)
	logger.Debug("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: " warn ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTraceCorrelation(t *testing.T) {
	t.Parallel()

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var buf bytes.Buffer
	logger := MustNew(WithOutput(&buf))

	ctx, span := tp.Tracer("test").Start(t.Context(), "op")
	logger.InfoContext(ctx, "inside span")
	span.End()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, span.SpanContext().TraceID().String(), entry[fieldTraceID])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry[fieldSpanID])
}

func TestConsoleHandler_Groups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := MustNew(WithOutput(&buf), WithHandlerType(ConsoleHandler))
	logger.WithGroup("http").With("method", "GET").Warn("request", "status", 404)

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "http.method=GET")
	assert.Contains(t, out, "http.status=404")
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	assert.False(t, Discard().Enabled(t.Context(), slog.LevelError))
}
