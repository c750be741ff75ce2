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
	"io"
	"log/slog"

	"github.com/rivaas-dev/basic-auth-service/metrics"
	"github.com/rivaas-dev/basic-auth-service/tracing"
)

// Option configures an [App].
type Option func(*App)

// WithLogger sets the service logger. Default: [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics uses rec instead of a recorder created from the
// configuration. It is ignored when metrics are disabled.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(a *App) { a.metrics = rec }
}

// WithTracing instruments requests and resource operations with p.
// [App.Run] shuts p down on exit.
func WithTracing(p *tracing.Provider) Option {
	return func(a *App) { a.tracing = p }
}

// WithVersion sets the version shown in the banner and build_info metric.
func WithVersion(version string) Option {
	return func(a *App) { a.version = version }
}

// WithBannerOutput sets where [App.Run] prints the startup banner.
// Pass [io.Discard] to silence it. Default: os.Stdout.
func WithBannerOutput(w io.Writer) Option {
	return func(a *App) { a.bannerOutput = w }
}
