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
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "basic_auth"

// Option configures a [Recorder].
type Option func(*config)

type config struct {
	namespace      string
	buckets        []float64
	runtimeMetrics bool
	serviceVersion string
}

func defaultConfig() *config {
	return &config{
		namespace:      DefaultNamespace,
		buckets:        prometheus.DefBuckets,
		runtimeMetrics: true,
	}
}

// WithNamespace sets the metric name prefix.
func WithNamespace(ns string) Option {
	return func(c *config) { c.namespace = ns }
}

// WithDurationBuckets sets the request latency histogram buckets, in seconds.
func WithDurationBuckets(buckets ...float64) Option {
	return func(c *config) { c.buckets = buckets }
}

// WithRuntimeMetrics toggles the Go runtime and process collectors.
// Default: true
func WithRuntimeMetrics(enabled bool) Option {
	return func(c *config) { c.runtimeMetrics = enabled }
}

// WithServiceVersion exports a build_info gauge carrying the version.
func WithServiceVersion(version string) Option {
	return func(c *config) { c.serviceVersion = version }
}

// Recorder holds the service collectors and their registry.
type Recorder struct {
	registry *prometheus.Registry

	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inFlight   prometheus.Gauge
	authChecks *prometheus.CounterVec
}

// New creates a recorder with a fresh registry.
func New(opts ...Option) *Recorder {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	reg := prometheus.NewRegistry()
	if cfg.runtimeMetrics {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)

	if cfg.serviceVersion != "" {
		factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.namespace,
			Name:        "build_info",
			Help:        "Build information of the running service.",
			ConstLabels: prometheus.Labels{"version": cfg.serviceVersion},
		}).Set(1)
	}

	return &Recorder{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   cfg.buckets,
		}, []string{"method", "route"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		authChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "auth_checks_total",
			Help:      "Basic authentication checks by result.",
		}, []string{"result"}),
	}
}

// Registry returns the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry:          r.registry,
		EnableOpenMetrics: true,
	})
}

// RecordAuthCheck counts one auth-check outcome.
func (r *Recorder) RecordAuthCheck(result string) {
	r.authChecks.WithLabelValues(result).Inc()
}

// RecordRequest counts one served request.
func (r *Recorder) RecordRequest(method, route string, status int, d time.Duration) {
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.duration.WithLabelValues(method, route).Observe(d.Seconds())
}
