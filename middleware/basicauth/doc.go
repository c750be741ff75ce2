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

// Package basicauth provides middleware implementing HTTP Basic
// Authentication (RFC 7617).
//
// The gate decides once per request. A request without usable credentials
// (no Authorization header, a scheme other than Basic, bad base64 or no colon
// separator) and a request whose credentials the [Validator] rejects both get
// 401 Unauthorized with a WWW-Authenticate challenge and no body, so the
// response never reveals whether a username exists. Valid requests continue
// down the chain unmodified; the username is available via [Username].
//
// The gate wraps whole route groups:
//
//	check := r.Group("/auth-check", basicauth.New(
//	    basicauth.WithRealm("basic-auth-service"),
//	    basicauth.WithValidator(validator),
//	))
//	check.Handle("", okHandler)
//
// Validators are pluggable. [Allow] and [Deny] are fixed validators for
// tests, [WithUsers] installs a constant-time static user table, and
// production deployments look credentials up in a store.
package basicauth
