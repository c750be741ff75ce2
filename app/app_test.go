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

package app_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/rivaas-dev/basic-auth-service/app"
	"github.com/rivaas-dev/basic-auth-service/config"
	"github.com/rivaas-dev/basic-auth-service/credentials"
	"github.com/rivaas-dev/basic-auth-service/logging"
	"github.com/rivaas-dev/basic-auth-service/tracing"
)

const jsonType = "application/json"

type downStore struct {
	*credentials.MemoryStore
}

func (downStore) Ping(context.Context) error { return errors.New("database unreachable") }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Database.Driver = "memory"
	cfg.Auth.BcryptCost = 4
	cfg.Auth.Realm = "test-realm"
	return cfg
}

func newApp(cfg *config.Config, store credentials.Store, opts ...app.Option) *app.App {
	GinkgoHelper()
	opts = append([]app.Option{
		app.WithLogger(logging.Discard()),
		app.WithBannerOutput(io.Discard),
	}, opts...)
	a, err := app.New(cfg, store, opts...)
	Expect(err).NotTo(HaveOccurred())
	return a
}

func do(h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func basic(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	GinkgoHelper()
	var body map[string]any
	Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
	return body
}

var _ = Describe("App", func() {
	var (
		cfg   *config.Config
		store *credentials.MemoryStore
		h     http.Handler
	)

	BeforeEach(func() {
		cfg = testConfig()
		store = credentials.NewMemoryStore()
	})

	JustBeforeEach(func() {
		h = newApp(cfg, store).Handler()
	})

	Describe("management surface", func() {
		It("creates a credential with a Location pointing at the instance", func() {
			w := do(h, http.MethodPost, "/credentials", jsonType,
				`{"username":"alice","password":"s3cret-pass","description":"ci"}`)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(w.Header().Get("Location")).To(Equal("/credentials/alice"))
			created := decode(w)
			Expect(created).To(HaveKeyWithValue("username", "alice"))
			Expect(created).To(HaveKeyWithValue("description", "ci"))
			Expect(created).NotTo(HaveKey("password"))

			By("following the Location header")
			got := do(h, http.MethodGet, w.Header().Get("Location"), jsonType, "")
			Expect(got.Code).To(Equal(http.StatusOK))
			Expect(decode(got)).To(Equal(created))
		})

		It("answers 405 with the allowed methods regardless of body", func() {
			for _, body := range []string{"", `{"x":1}`, "not json"} {
				w := do(h, http.MethodPatch, "/credentials", jsonType, body)
				Expect(w.Code).To(Equal(http.StatusMethodNotAllowed))
				Expect(w.Header().Get("Allow")).To(Equal("GET, POST"))
				resp := decode(w)
				Expect(resp).To(HaveKeyWithValue("error", "MethodNotAllowed"))
				Expect(resp).To(HaveKeyWithValue("allowed_methods", ConsistOf("GET", "POST")))
			}

			w := do(h, http.MethodPost, "/credentials/alice", jsonType, "")
			Expect(w.Code).To(Equal(http.StatusMethodNotAllowed))
			Expect(w.Header().Get("Allow")).To(Equal("DELETE, GET, PUT"))
		})

		It("rejects an unparsable start_date naming the parameter and format", func() {
			w := do(h, http.MethodGet, "/credentials?start_date=not-a-date", jsonType, "")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			resp := decode(w)
			Expect(resp).To(HaveKeyWithValue("error", "BadRequest"))
			Expect(resp["message"]).To(ContainSubstring("start_date"))
			Expect(resp["message"]).To(ContainSubstring("%Y-%m-%d-%H-%M"))
			Expect(resp).To(HaveKeyWithValue("parameter", "start_date"))
		})

		It("treats an empty start_date as no bound", func() {
			Expect(do(h, http.MethodPost, "/credentials", jsonType,
				`{"username":"bob","password":"s3cret-pass"}`).Code).To(Equal(http.StatusCreated))

			w := do(h, http.MethodGet, "/credentials?start_date=", jsonType, "")
			Expect(w.Code).To(Equal(http.StatusOK))
			var list []map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &list)).To(Succeed())
			Expect(list).To(HaveLen(1))
		})

		It("filters the collection by creation date", func() {
			Expect(do(h, http.MethodPost, "/credentials", jsonType,
				`{"username":"bob","password":"s3cret-pass"}`).Code).To(Equal(http.StatusCreated))

			future := time.Now().UTC().Add(48 * time.Hour).Format("2006-01-02-15-04")
			past := time.Now().UTC().Add(-48 * time.Hour).Format("2006-01-02-15-04")

			var list []map[string]any
			w := do(h, http.MethodGet, "/credentials?start_date="+past, jsonType, "")
			Expect(json.Unmarshal(w.Body.Bytes(), &list)).To(Succeed())
			Expect(list).To(HaveLen(1))

			w = do(h, http.MethodGet, "/credentials?start_date="+future, jsonType, "")
			Expect(json.Unmarshal(w.Body.Bytes(), &list)).To(Succeed())
			Expect(list).To(BeEmpty())
		})

		It("rejects malformed JSON", func() {
			w := do(h, http.MethodPost, "/credentials", jsonType, `{"username":`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w)).To(HaveKeyWithValue("message", "Invalid JSON payload"))
		})

		It("treats an empty body as no payload", func() {
			req := httptest.NewRequest(http.MethodPost, "/credentials", http.NoBody)
			req.Header.Set("Content-Type", jsonType)
			req.ContentLength = 0
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			resp := decode(w)
			Expect(resp).To(HaveKeyWithValue("error", "InvalidResourceDetails"))
			Expect(resp).To(HaveKeyWithValue("message", "Request body required"))
		})

		It("maps store errors to API errors", func() {
			body := `{"username":"carol","password":"s3cret-pass"}`
			Expect(do(h, http.MethodPost, "/credentials", jsonType, body).Code).To(Equal(http.StatusCreated))

			w := do(h, http.MethodPost, "/credentials", jsonType, body)
			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(decode(w)).To(HaveKeyWithValue("error", "ResourceAlreadyExists"))

			w = do(h, http.MethodGet, "/credentials/nobody", jsonType, "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decode(w)).To(HaveKeyWithValue("error", "NotFound"))

			w = do(h, http.MethodPost, "/credentials", jsonType, `{"username":"dave","password":"short"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w)).To(HaveKeyWithValue("error", "InvalidResourceDetails"))
		})

		It("updates and deletes an instance", func() {
			Expect(do(h, http.MethodPost, "/credentials", jsonType,
				`{"username":"erin","password":"s3cret-pass"}`).Code).To(Equal(http.StatusCreated))

			w := do(h, http.MethodPut, "/credentials/erin", jsonType, `{"description":"rotated"}`)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)).To(HaveKeyWithValue("description", "rotated"))

			w = do(h, http.MethodDelete, "/credentials/erin", jsonType, "")
			Expect(w.Code).To(Equal(http.StatusOK))

			Expect(do(h, http.MethodGet, "/credentials/erin", jsonType, "").Code).To(Equal(http.StatusNotFound))
		})

		Context("media type contract", func() {
			It("rejects a missing or wrong Content-Type even on GET", func() {
				for _, ct := range []string{"", "text/plain", "application/vnd.api+json"} {
					w := do(h, http.MethodGet, "/credentials", ct, "")
					Expect(w.Code).To(Equal(http.StatusBadRequest), "content type %q", ct)
					Expect(decode(w)["message"]).To(HavePrefix("Expected content type application/json"))
				}
			})

			It("accepts any profile when none is configured", func() {
				w := do(h, http.MethodGet, "/credentials", "application/json;profile=X", "")
				Expect(w.Code).To(Equal(http.StatusOK))
			})

			Context("with a configured profile", func() {
				BeforeEach(func() {
					cfg.API.Profile = "X"
					cfg.API.Version = "2"
				})

				It("accepts only the configured profile and version", func() {
					Expect(do(h, http.MethodGet, "/credentials",
						"application/json; profile=X; version=2", "").Code).To(Equal(http.StatusOK))
					Expect(do(h, http.MethodGet, "/credentials",
						"application/json;profile=Y;version=2", "").Code).To(Equal(http.StatusBadRequest))
					Expect(do(h, http.MethodGet, "/credentials",
						"application/json;profile=X", "").Code).To(Equal(http.StatusBadRequest))
				})
			})
		})

		Context("with problem details", func() {
			BeforeEach(func() {
				cfg.API.ErrorFormat = "problem"
				cfg.API.ProblemBaseURL = "https://errors.example.com/"
			})

			It("renders RFC 9457 bodies", func() {
				w := do(h, http.MethodGet, "/credentials/nobody", jsonType, "")
				Expect(w.Code).To(Equal(http.StatusNotFound))
				Expect(w.Header().Get("Content-Type")).To(HavePrefix("application/problem+json"))
				resp := decode(w)
				Expect(resp).To(HaveKeyWithValue("status", BeNumerically("==", 404)))
				Expect(resp).To(HaveKeyWithValue("code", "NotFound"))
			})
		})
	})

	Describe("auth-check surface", func() {
		JustBeforeEach(func() {
			Expect(do(h, http.MethodPost, "/credentials", jsonType,
				`{"username":"user","password":"password1"}`).Code).To(Equal(http.StatusCreated))
		})

		checkPath := func(path, authorization string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			if authorization != "" {
				req.Header.Set("Authorization", authorization)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			return w
		}
		check := func(authorization string) *httptest.ResponseRecorder {
			return checkPath("/auth-check", authorization)
		}

		DescribeTable("gate decisions",
			func(authorization string, status int) {
				w := check(authorization)
				Expect(w.Code).To(Equal(status))
				if status == http.StatusUnauthorized {
					Expect(w.Header().Get("WWW-Authenticate")).To(Equal(`Basic realm="test-realm"`))
					Expect(w.Body.Len()).To(BeZero())
				}
			},
			Entry("no Authorization header", "", http.StatusUnauthorized),
			Entry("another scheme", "Bearer abc", http.StatusUnauthorized),
			Entry("malformed base64", "Basic !!!", http.StatusUnauthorized),
			Entry("unknown user", basic("foo", "bar"), http.StatusUnauthorized),
			Entry("wrong password", basic("user", "nope"), http.StatusUnauthorized),
			Entry("valid credentials", basic("user", "password1"), http.StatusOK),
		)

		DescribeTable("gate covers the whole subtree",
			func(path, authorization string, status int) {
				w := checkPath(path, authorization)
				Expect(w.Code).To(Equal(status))
				if status == http.StatusUnauthorized {
					Expect(w.Header().Get("WWW-Authenticate")).To(Equal(`Basic realm="test-realm"`))
				} else {
					Expect(w.Header().Get("WWW-Authenticate")).To(BeEmpty())
				}
			},
			Entry("trailing slash without credentials", "/auth-check/", "", http.StatusUnauthorized),
			Entry("trailing slash with unknown user", "/auth-check/", basic("foo", "bar"), http.StatusUnauthorized),
			Entry("trailing slash with valid credentials", "/auth-check/", basic("user", "password1"), http.StatusOK),
			Entry("sub path without credentials", "/auth-check/x", "", http.StatusUnauthorized),
			Entry("nested sub path with unknown user", "/auth-check/x/y", basic("foo", "bar"), http.StatusUnauthorized),
			Entry("sub path with valid credentials", "/auth-check/x", basic("user", "password1"), http.StatusNotFound),
		)

		It("leaves sibling paths outside the gate", func() {
			w := checkPath("/auth-checker", "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(w.Header().Get("WWW-Authenticate")).To(BeEmpty())
		})

		It("passes any method through once authorized", func() {
			for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodHead, http.MethodDelete} {
				req := httptest.NewRequest(method, "/auth-check", nil)
				req.Header.Set("Authorization", basic("user", "password1"))
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)
				Expect(w.Code).To(Equal(http.StatusOK), method)
			}
		})

		It("counts auth checks by result", func() {
			check(basic("user", "password1"))
			check(basic("user", "nope"))
			check("")

			w := do(h, http.MethodGet, "/metrics", "", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`basic_auth_auth_checks_total{result="valid"} 1`))
			Expect(w.Body.String()).To(ContainSubstring(`basic_auth_auth_checks_total{result="invalid"} 1`))
			Expect(w.Body.String()).To(ContainSubstring(`basic_auth_auth_checks_total{result="no_credentials"} 1`))
		})
	})

	Describe("health", func() {
		It("reports ok", func() {
			w := do(h, http.MethodGet, "/health", "", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)).To(Equal(map[string]any{"status": "ok"}))
		})

		It("rejects other methods", func() {
			w := do(h, http.MethodPost, "/health", "", "")
			Expect(w.Code).To(Equal(http.StatusMethodNotAllowed))
			Expect(w.Header().Get("Allow")).To(Equal("GET, HEAD"))
		})

		It("reports unavailable when the store is down", func() {
			down := newApp(cfg, downStore{credentials.NewMemoryStore()}).Handler()
			w := do(down, http.MethodGet, "/health", "", "")
			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("cross-cutting middleware", func() {
		It("sets a request id on every response", func() {
			w := do(h, http.MethodGet, "/health", "", "")
			Expect(w.Header().Get("X-Request-ID")).NotTo(BeEmpty())
		})

		It("answers unknown paths with a structured 404", func() {
			w := do(h, http.MethodGet, "/nope", "", "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decode(w)).To(HaveKeyWithValue("error", "NotFound"))
		})

		Context("with metrics disabled", func() {
			BeforeEach(func() { cfg.Metrics.Disabled = true })

			It("does not mount the metrics endpoint", func() {
				Expect(do(h, http.MethodGet, "/metrics", "", "").Code).To(Equal(http.StatusNotFound))
			})
		})

		It("traces requests and resource operations", func() {
			exp := tracetest.NewInMemoryExporter()
			tp, err := tracing.New(context.Background(), tracing.WithSpanExporter(exp))
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(tp.Shutdown, context.Background())

			traced := newApp(cfg, store, app.WithTracing(tp)).Handler()
			Expect(do(traced, http.MethodGet, "/credentials", jsonType, "").Code).To(Equal(http.StatusOK))

			names := make([]string, 0, 2)
			for _, s := range exp.GetSpans() {
				names = append(names, s.Name)
			}
			Expect(names).To(ConsistOf("resource.get_all", "GET /credentials"))
		})
	})

	Describe("Run", func() {
		It("serves until the context is canceled", func() {
			cfg.Server.Addr = "127.0.0.1:0"
			cfg.Server.ShutdownTimeout = 2 * time.Second

			var banner bytes.Buffer
			a := newApp(cfg, store, app.WithBannerOutput(&banner), app.WithVersion("1.2.3"))

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- a.Run(ctx) }()

			Eventually(a.Ready()).Should(BeClosed())
			resp, err := http.Get("http://" + a.Addr().String() + "/health")
			Expect(err).NotTo(HaveOccurred())
			_ = resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			Expect(banner.String()).To(ContainSubstring("1.2.3"))
			Expect(banner.String()).To(ContainSubstring("/credentials/{id}"))

			cancel()
			Eventually(done, 3*time.Second).Should(Receive(BeNil()))
		})

		It("fails on an invalid address", func() {
			cfg.Server.Addr = "127.0.0.1:99999"
			Expect(newApp(cfg, store).Run(context.Background())).To(MatchError(ContainSubstring("listening on")))
		})
	})
})
