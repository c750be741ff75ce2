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

// Package logging builds the service's [slog.Logger].
//
// Three handler types are supported: JSON for production log aggregation,
// text for key=value output and console for colored development output.
// Every handler redacts attributes named password, token, secret, api_key
// or authorization, and adds trace_id and span_id when the record's
// context carries a sampled OpenTelemetry span.
//
// Example:
//
//	logger, err := logging.New(
//	    logging.WithHandlerType(logging.JSONHandler),
//	    logging.WithLevel(slog.LevelInfo),
//	    logging.WithServiceName("basic-auth-service"),
//	)
package logging
