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

// Package tracing sets up OpenTelemetry tracing for the service.
//
// [New] builds an SDK tracer provider backed by the configured exporter:
// none keeps spans in process (useful for log correlation only), stdout
// pretty-prints finished spans, otlp ships them to an OTLP/HTTP collector
// and otlp-grpc to an OTLP/gRPC one. [Middleware] starts a server span per request, continuing a
// W3C trace context sent by the caller.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Exporter selects where spans go.
type Exporter string

const (
	// NoneExporter records spans without exporting them.
	NoneExporter Exporter = "none"
	// StdoutExporter writes finished spans as JSON.
	StdoutExporter Exporter = "stdout"
	// OTLPExporter sends spans to an OTLP/HTTP collector.
	OTLPExporter Exporter = "otlp"
	// OTLPGRPCExporter sends spans to an OTLP/gRPC collector.
	OTLPGRPCExporter Exporter = "otlp-grpc"
)

// InstrumentationName names the tracer used by the service.
const InstrumentationName = "github.com/rivaas-dev/basic-auth-service"

// ErrUnsupportedExporter is returned for an unknown [Exporter].
var ErrUnsupportedExporter = errors.New("unsupported tracing exporter")

// Option configures [New].
type Option func(*config)

type config struct {
	exporter       Exporter
	endpoint       string
	insecure       bool
	sampleRatio    float64
	serviceName    string
	serviceVersion string
	output         io.Writer
	spanExporter   sdktrace.SpanExporter
}

func defaultConfig() *config {
	return &config{
		exporter:    NoneExporter,
		sampleRatio: 1,
		serviceName: "basic-auth-service",
		output:      os.Stdout,
	}
}

// WithExporter selects the exporter. Default: none
func WithExporter(e Exporter) Option {
	return func(c *config) { c.exporter = e }
}

// WithOTLPEndpoint sets the collector host:port and whether to skip TLS.
func WithOTLPEndpoint(endpoint string, insecure bool) Option {
	return func(c *config) {
		c.endpoint = endpoint
		c.insecure = insecure
	}
}

// WithSampleRatio sets the fraction of new traces to sample. Traces
// continued from a caller follow the caller's decision.
func WithSampleRatio(ratio float64) Option {
	return func(c *config) { c.sampleRatio = ratio }
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(c *config) { c.serviceName = name }
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(c *config) { c.serviceVersion = version }
}

// WithOutput sets the writer of the stdout exporter.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// WithSpanExporter uses exp synchronously instead of the configured
// exporter. Mostly useful in tests.
func WithSpanExporter(exp sdktrace.SpanExporter) Option {
	return func(c *config) { c.spanExporter = exp }
}

// Provider wraps the SDK tracer provider.
type Provider struct {
	tp         *sdktrace.TracerProvider
	propagator propagation.TextMapPropagator
	exporter   Exporter
}

// New creates a provider. The context bounds exporter setup.
func New(ctx context.Context, opts ...Option) (*Provider, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.sampleRatio < 0 || cfg.sampleRatio > 1 {
		return nil, fmt.Errorf("sample ratio %v out of range [0, 1]", cfg.sampleRatio)
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.serviceName),
			semconv.ServiceVersion(cfg.serviceVersion),
		)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.sampleRatio))),
	}

	switch {
	case cfg.spanExporter != nil:
		tpOpts = append(tpOpts, sdktrace.WithSyncer(cfg.spanExporter))
	case cfg.exporter == NoneExporter:
	case cfg.exporter == StdoutExporter:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(cfg.output), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
	case cfg.exporter == OTLPExporter:
		var httpOpts []otlptracehttp.Option
		if cfg.endpoint != "" {
			httpOpts = append(httpOpts, otlptracehttp.WithEndpoint(cfg.endpoint))
		}
		if cfg.insecure {
			httpOpts = append(httpOpts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, httpOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
	case cfg.exporter == OTLPGRPCExporter:
		var grpcOpts []otlptracegrpc.Option
		if cfg.endpoint != "" {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithEndpoint(cfg.endpoint))
		}
		if cfg.insecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}
		exp, err := otlptracegrpc.New(ctx, grpcOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExporter, cfg.exporter)
	}

	return &Provider{
		tp: sdktrace.NewTracerProvider(tpOpts...),
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
		exporter: cfg.exporter,
	}, nil
}

// TracerProvider returns the provider for instrumented components.
func (p *Provider) TracerProvider() trace.TracerProvider {
	return p.tp
}

// Tracer returns the service tracer.
func (p *Provider) Tracer() trace.Tracer {
	return p.tp.Tracer(InstrumentationName)
}

// Exporter returns the configured exporter kind.
func (p *Provider) Exporter() Exporter {
	return p.exporter
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down tracer provider: %w", err)
	}
	return nil
}
