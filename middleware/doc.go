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

// Package middleware holds types shared by the middleware sub-packages.
//
// Each middleware lives in its own package:
//
//   - basicauth: HTTP Basic authentication gate (RFC 7617)
//   - contenttype: media type, profile and version contract for API requests
//   - requestid: request id generation and propagation
//   - recovery: panic recovery
//   - accesslog: structured access logging
//
// A typical management API stack:
//
//	r := router.New()
//	r.Use(recovery.New(), requestid.New(), accesslog.New(accesslog.WithLogger(logger)))
package middleware
