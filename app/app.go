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

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/rivaas-dev/basic-auth-service/config"
	"github.com/rivaas-dev/basic-auth-service/credentials"
	apierrors "github.com/rivaas-dev/basic-auth-service/errors"
	"github.com/rivaas-dev/basic-auth-service/metrics"
	"github.com/rivaas-dev/basic-auth-service/middleware/accesslog"
	"github.com/rivaas-dev/basic-auth-service/middleware/basicauth"
	"github.com/rivaas-dev/basic-auth-service/middleware/recovery"
	"github.com/rivaas-dev/basic-auth-service/middleware/requestid"
	"github.com/rivaas-dev/basic-auth-service/resource"
	"github.com/rivaas-dev/basic-auth-service/router"
	"github.com/rivaas-dev/basic-auth-service/tracing"
)

// ServiceName identifies the service in logs, traces and the banner.
const ServiceName = "basic-auth-service"

// HealthPath is the liveness and readiness endpoint.
const HealthPath = "/health"

const healthTimeout = 2 * time.Second

// App is the assembled service.
type App struct {
	cfg     *config.Config
	store   credentials.Store
	version string

	logger       *slog.Logger
	metrics      *metrics.Recorder
	tracing      *tracing.Provider
	bannerOutput io.Writer

	formatter apierrors.Formatter
	router    *router.Router
	resource  *resource.Resource

	mu    sync.Mutex
	addr  net.Addr
	ready chan struct{}
}

// New builds the service from cfg on top of store. The caller keeps
// ownership of store.
func New(cfg *config.Config, store credentials.Store, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	if store == nil {
		return nil, errors.New("app: nil store")
	}

	a := &App{
		cfg:          cfg,
		store:        store,
		version:      "dev",
		logger:       slog.Default(),
		bannerOutput: os.Stdout,
		ready:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	switch {
	case cfg.Metrics.Disabled:
		a.metrics = nil
	case a.metrics == nil:
		a.metrics = metrics.New(metrics.WithServiceVersion(a.version))
	}

	a.formatter = newFormatter(cfg.API)
	a.router = router.New(
		router.WithLogger(a.logger),
		router.WithNotFound(a.notFound),
	)
	a.useMiddleware()

	if err := a.registerResource(); err != nil {
		return nil, err
	}
	a.router.Handle(HealthPath, a.health).Name("health")
	if a.metrics != nil {
		a.router.Mount(cfg.Metrics.Path, a.metrics.Handler()).Name("metrics")
	}
	// registered last: the auth-check subtree catches every path below it
	if err := a.registerAuthCheck(); err != nil {
		return nil, err
	}

	return a, nil
}

func newFormatter(cfg config.APIConfig) apierrors.Formatter {
	if cfg.ErrorFormat == "problem" {
		return apierrors.NewRFC9457(cfg.ProblemBaseURL)
	}
	return apierrors.NewSimple()
}

func (a *App) useMiddleware() {
	quiet := []string{HealthPath, a.cfg.Metrics.Path}

	if a.tracing != nil {
		a.router.Use(tracing.Middleware(a.tracing, quiet...))
	}

	a.router.Use(recovery.New(recovery.WithFormatter(a.formatter)))

	ridOpts := []requestid.Option{}
	if a.cfg.Server.RequestID == "ulid" {
		ridOpts = append(ridOpts, requestid.WithULID())
	}
	a.router.Use(requestid.New(ridOpts...))

	a.router.Use(accesslog.New(accesslog.WithExcludePaths(quiet...)))

	if a.metrics != nil {
		a.router.Use(metrics.Middleware(a.metrics, metrics.WithExcludePaths(a.cfg.Metrics.Path)))
	}
}

func (a *App) registerResource() error {
	delegate, err := credentials.NewResource(a.store, credentials.WithBcryptCost(a.cfg.Auth.BcryptCost))
	if err != nil {
		return fmt.Errorf("creating credentials resource: %w", err)
	}

	opts := []resource.Option{
		resource.WithFormatter(a.formatter),
		resource.WithContentType(a.cfg.API.Profile, a.cfg.API.Version),
		resource.WithMaxBodyBytes(a.cfg.Server.MaxBodyBytes),
	}
	if a.tracing != nil {
		opts = append(opts, resource.WithTracerProvider(a.tracing.TracerProvider()))
	}

	a.resource, err = resource.New(credentials.Name, delegate, opts...)
	if err != nil {
		return fmt.Errorf("creating resource engine: %w", err)
	}
	a.resource.Register(a.router)
	return nil
}

func (a *App) registerAuthCheck() error {
	validator, err := credentials.NewStoreValidator(a.store, a.cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("creating auth validator: %w", err)
	}

	opts := []basicauth.Option{
		basicauth.WithRealm(a.cfg.Auth.Realm),
		basicauth.WithValidator(validator),
		basicauth.WithLogger(a.logger),
	}
	if a.metrics != nil {
		opts = append(opts, basicauth.WithReporter(func(s basicauth.State) {
			a.metrics.RecordAuthCheck(s.String())
		}))
	}

	check := a.router.Group(a.cfg.Auth.Path, basicauth.New(opts...))
	check.Handle("", authorized).Name("auth-check")
	check.Handle("/", authorized)
	check.HandlePrefix("/", a.notFound)
	return nil
}

// authorized answers every method once the gate let the request through.
func authorized(c *router.Context) {
	if err := c.JSON(http.StatusOK, struct{}{}); err != nil {
		c.Logger().Debug("failed to write auth-check response", "error", err)
	}
}

var healthMethods = []string{http.MethodGet, http.MethodHead}

func (a *App) health(c *router.Context) {
	if !slices.Contains(healthMethods, c.Request.Method) {
		a.writeError(c, apierrors.MethodNotAllowed(c.Request.Method, healthMethods))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status, body := http.StatusOK, map[string]string{"status": "ok"}
	if err := a.store.Ping(ctx); err != nil {
		c.Logger().WarnContext(ctx, "health check failed", "error", err)
		status, body = http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}
	}
	if err := c.JSON(status, body); err != nil {
		c.Logger().Debug("failed to write health response", "error", err)
	}
}

func (a *App) notFound(c *router.Context) {
	a.writeError(c, apierrors.New(apierrors.KindNotFound, "Not Found"))
}

func (a *App) writeError(c *router.Context, err error) {
	if werr := apierrors.Write(c.Response, c.Request, a.formatter, err); werr != nil {
		c.Logger().Debug("failed to write error response", "error", werr)
	}
}

// Handler returns the service as an [http.Handler].
func (a *App) Handler() http.Handler {
	return a.router
}

// Router returns the service router.
func (a *App) Router() *router.Router {
	return a.router
}

// Metrics returns the recorder, nil when metrics are disabled.
func (a *App) Metrics() *metrics.Recorder {
	return a.metrics
}

// Ready is closed once [App.Run] accepts connections.
func (a *App) Ready() <-chan struct{} {
	return a.ready
}

// Addr returns the listening address, nil before [App.Run] is ready.
func (a *App) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addr
}
