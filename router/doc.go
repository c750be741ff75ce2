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

// Package router provides a small HTTP router built around a handler chain.
//
// Routes are matched by gorilla/mux, which also gives named routes and URL
// reversal. Every matched route runs a flat chain of [HandlerFunc] values:
// global middleware first, then group middleware, then the route handlers.
// Middleware continues the chain with [Context.Next] and stops it with
// [Context.Abort].
//
// Routes registered with [Router.Handle] accept any HTTP method, so handlers
// can answer unsupported methods themselves with a structured response
// instead of a generic 405 from the route layer.
//
// Basic usage:
//
//	r := router.New(router.WithLogger(logger))
//	r.Use(requestid.New())
//	r.Handle("/items", listOrCreate).Name("items.collection")
//	r.Handle("/items/{id}", showUpdateOrDelete).Name("items.instance")
//
//	loc, _ := r.URLFor("items.instance", map[string]string{"id": "42"})
//	// loc == "/items/42"
//
// Middleware must be registered before the router starts serving requests.
package router
