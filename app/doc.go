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

// Package app assembles the basic-auth service.
//
// [New] wires two HTTP surfaces onto one router. The management surface
// exposes the credentials resource under /credentials and
// /credentials/{id}, guarded by the JSON media type contract. The
// auth-check surface answers 200 to any request carrying valid Basic
// credentials and 401 otherwise, which makes it usable as the target of
// reverse-proxy subrequest authentication. Both share the global
// middleware chain (tracing, panic recovery, request ids, access logs and
// metrics) and sit next to the /health and metrics endpoints.
//
// Example:
//
//	store, _ := credentials.OpenSQLite(ctx, cfg.Database.DSN)
//	a, err := app.New(cfg, store, app.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	return a.Run(ctx)
package app
