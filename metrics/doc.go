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

// Package metrics exposes Prometheus metrics for the service.
//
// A [Recorder] owns its own registry so several recorders can coexist in
// one process, which keeps tests independent. It records HTTP request
// counts, latencies and in-flight requests through [Middleware], and the
// outcome of every auth-check through [Recorder.RecordAuthCheck].
//
// Example:
//
//	rec := metrics.New(metrics.WithNamespace("basic_auth"))
//	r.Use(metrics.Middleware(rec, metrics.WithExcludePaths("/metrics")))
//	r.Mount("/metrics", rec.Handler())
package metrics
