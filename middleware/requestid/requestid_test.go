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

package requestid

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/basic-auth-service/router"
)

func TestRequestID_GeneratesUUIDv7(t *testing.T) {
	t.Parallel()

	r := router.New()
	r.Use(New())
	var seen string
	r.Handle("/test", func(c *router.Context) {
		seen = Get(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	requestID := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, requestID)
	assert.Equal(t, requestID, seen)

	id, err := uuid.Parse(requestID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestRequestID_ULID(t *testing.T) {
	t.Parallel()

	r := router.New()
	r.Use(New(WithULID()))
	r.Handle("/test", func(c *router.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	requestID := w.Header().Get("X-Request-ID")
	assert.Len(t, requestID, 26)
	_, err := ulid.ParseStrict(requestID)
	assert.NoError(t, err)
}

func TestRequestID_ClientIDHandling(t *testing.T) {
	t.Parallel()

	const clientID = "client-provided-id-123"

	tests := []struct {
		name         string
		allowClient  bool
		expectClient bool
	}{
		{name: "allow client ID", allowClient: true, expectClient: true},
		{name: "disallow client ID", allowClient: false, expectClient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := router.New()
			r.Use(New(WithAllowClientID(tt.allowClient)))
			r.Handle("/test", func(c *router.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("X-Request-ID", clientID)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			requestID := w.Header().Get("X-Request-ID")
			assert.NotEmpty(t, requestID)
			if tt.expectClient {
				assert.Equal(t, clientID, requestID)
			} else {
				assert.NotEqual(t, clientID, requestID)
			}
		})
	}
}

func TestRequestID_CustomHeaderAndGenerator(t *testing.T) {
	t.Parallel()

	r := router.New()
	r.Use(New(WithHeader("X-Correlation-ID"), WithGenerator(func() string { return "fixed" })))
	r.Handle("/test", func(c *router.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, "fixed", w.Header().Get("X-Correlation-ID"))
	assert.Empty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_AttachesToLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := router.New(router.WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
	r.Use(New(WithGenerator(func() string { return "req-1" })))
	r.Handle("/test", func(c *router.Context) {
		c.Logger().Info("handled")
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
}
