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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// HandlerType represents the type of logging handler.
type HandlerType string

const (
	// JSONHandler outputs structured JSON logs.
	JSONHandler HandlerType = "json"
	// TextHandler outputs key=value text logs.
	TextHandler HandlerType = "text"
	// ConsoleHandler outputs human-readable colored logs.
	ConsoleHandler HandlerType = "console"
)

const redacted = "***REDACTED***"

var (
	// ErrInvalidHandler indicates an unsupported handler type.
	ErrInvalidHandler = errors.New("invalid handler type")

	// ErrInvalidLevel indicates an unknown level name.
	ErrInvalidLevel = errors.New("invalid log level")
)

// Option configures [New].
type Option func(*config)

type config struct {
	handlerType    HandlerType
	output         io.Writer
	level          slog.Leveler
	addSource      bool
	serviceName    string
	serviceVersion string
}

func defaultConfig() *config {
	return &config{
		handlerType: JSONHandler,
		output:      os.Stdout,
		level:       slog.LevelInfo,
	}
}

// WithHandlerType selects the output format.
func WithHandlerType(t HandlerType) Option {
	return func(c *config) { c.handlerType = t }
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// WithLevel sets the minimum level. Pass a [*slog.LevelVar] to change it
// at runtime.
func WithLevel(level slog.Leveler) Option {
	return func(c *config) { c.level = level }
}

// WithSource adds the source file and line to every record.
func WithSource(enabled bool) Option {
	return func(c *config) { c.addSource = enabled }
}

// WithServiceName adds a service attribute to every record.
func WithServiceName(name string) Option {
	return func(c *config) { c.serviceName = name }
}

// WithServiceVersion adds a version attribute to every record.
func WithServiceVersion(version string) Option {
	return func(c *config) { c.serviceVersion = version }
}

// New creates a logger.
func New(opts ...Option) (*slog.Logger, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.output == nil {
		return nil, errors.New("output writer cannot be nil")
	}

	hopts := &slog.HandlerOptions{
		Level:       cfg.level,
		AddSource:   cfg.addSource,
		ReplaceAttr: redact,
	}

	var handler slog.Handler
	switch cfg.handlerType {
	case JSONHandler:
		handler = slog.NewJSONHandler(cfg.output, hopts)
	case TextHandler:
		handler = slog.NewTextHandler(cfg.output, hopts)
	case ConsoleHandler:
		handler = newConsoleHandler(cfg.output, hopts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidHandler, cfg.handlerType)
	}

	logger := slog.New(&traceHandler{next: handler})

	var attrs []any
	if cfg.serviceName != "" {
		attrs = append(attrs, "service", cfg.serviceName)
	}
	if cfg.serviceVersion != "" {
		attrs = append(attrs, "version", cfg.serviceVersion)
	}
	if len(attrs) > 0 {
		logger = logger.With(attrs...)
	}
	return logger, nil
}

// MustNew is [New] that panics on error.
func MustNew(opts ...Option) *slog.Logger {
	logger, err := New(opts...)
	if err != nil {
		panic("logging initialization failed: " + err.Error())
	}
	return logger
}

// ParseLevel converts debug, info, warn or error (any case) to a level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return level, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func redact(_ []string, a slog.Attr) slog.Attr {
	switch strings.ToLower(a.Key) {
	case "password", "token", "secret", "api_key", "authorization":
		return slog.String(a.Key, redacted)
	}
	return a
}
