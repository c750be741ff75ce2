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

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterHandleMatchesAnyMethod(t *testing.T) {
	t.Parallel()

	r := New()
	r.Handle("/items", func(c *Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"method": c.Request.Method})
	})

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions} {
		t.Run(method, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(method, "/items", nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), method)
		})
	}
}

func TestRouterParamsAndURLFor(t *testing.T) {
	t.Parallel()

	r := New()
	r.Handle("/items/{id}", func(c *Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
	}).Name("items.instance")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"abc"}`, w.Body.String())

	url, err := r.URLFor("items.instance", map[string]string{"id": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "/items/alice", url)

	_, err = r.URLFor("missing", nil)
	require.ErrorIs(t, err, ErrRouteNotFound)
}

func TestRouterMiddlewareOrderAndAbort(t *testing.T) {
	t.Parallel()

	var trace []string
	r := New()
	r.Use(func(c *Context) {
		trace = append(trace, "global")
		c.Next()
	})

	g := r.Group("/admin", func(c *Context) {
		trace = append(trace, "group")
		if c.Request.Header.Get("X-Deny") != "" {
			c.WriteErrorResponse(http.StatusForbidden, "denied")
			c.Abort()
			return
		}
		c.Next()
	})
	g.Handle("/stats", func(c *Context) {
		trace = append(trace, "handler")
		c.NoContent()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"global", "group", "handler"}, trace)

	trace = nil
	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("X-Deny", "1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, []string{"global", "group"}, trace)
}

func TestRouterNotFoundRunsGlobalMiddleware(t *testing.T) {
	t.Parallel()

	r := New(WithNotFound(func(c *Context) {
		_ = c.JSON(http.StatusNotFound, map[string]string{"error": "NotFound"})
	}))
	r.Use(func(c *Context) {
		c.Header("X-Seen", "yes")
		c.Next()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "yes", w.Header().Get("X-Seen"))
	assert.JSONEq(t, `{"error":"NotFound"}`, w.Body.String())
}

func TestGroupHandlePrefixRunsGroupMiddleware(t *testing.T) {
	t.Parallel()

	r := New()
	g := r.Group("/auth-check", func(c *Context) {
		if c.Request.Header.Get("X-Allow") == "" {
			c.Status(http.StatusUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	})
	g.Handle("", func(c *Context) { _ = c.JSON(http.StatusOK, "root") })
	g.HandlePrefix("/", func(c *Context) { _ = c.JSON(http.StatusNotFound, c.RoutePattern()) })

	tests := []struct {
		name    string
		path    string
		allowed bool
		want    int
		body    string
	}{
		{name: "exact path", path: "/auth-check", allowed: true, want: http.StatusOK, body: `"root"`},
		{name: "subtree denied", path: "/auth-check/x", want: http.StatusUnauthorized},
		{name: "trailing slash denied", path: "/auth-check/", want: http.StatusUnauthorized},
		{name: "subtree allowed", path: "/auth-check/x/y", allowed: true, want: http.StatusNotFound, body: `"/auth-check/*"`},
		{name: "sibling outside group", path: "/auth-checker", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.allowed {
				req.Header.Set("X-Allow", "1")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRouterGETRejectsOtherMethods(t *testing.T) {
	t.Parallel()

	r := New()
	r.GET("/health", func(c *Context) { c.NoContent() })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouterMount(t *testing.T) {
	t.Parallel()

	r := New()
	r.Mount("/metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "metrics", w.Body.String())
}

func TestContextJSONKeepsExistingContentType(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	c := NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil))
	c.Header("Content-Type", "application/json; profile=x")

	require.NoError(t, c.JSON(http.StatusCreated, map[string]int{"n": 1}))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; profile=x", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), `{"n":1}`))
}

func TestContextStatusWrittenOnce(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	c := NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil))
	c.Status(http.StatusAccepted)
	c.Status(http.StatusInternalServerError)

	assert.Equal(t, http.StatusAccepted, w.Code)
}
