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

// Package resource implements a generic REST dispatch engine.
//
// A [Resource] exposes a delegate at two URL shapes: the collection
// (/{name}) and the instance (/{name}/{id}). Both routes accept every HTTP
// method; the engine maps the method to an [Operation] through a fixed
// table, rejects methods outside the allowed set with 405, validates the
// JSON payload and query, calls the delegate and shapes the response.
//
//	collection  GET    -> GetAll  (200)
//	            POST   -> Create  (201 + Location)
//	instance    GET    -> Get     (200)
//	            PUT    -> Update  (200)
//	            DELETE -> Delete  (200)
//
// A delegate implements any subset of [Lister], [Creator], [Getter],
// [Updater] and [Deleter]. The allowed method sets can only narrow what the
// table offers, and [New] fails when an allowed method maps to an operation
// the delegate does not implement.
//
// Delegate errors are translated exactly once, by [errors.ToAPIError]:
// domain sentinels become 404, 409 or 400 and anything else a 500 without
// detail.
//
// Example:
//
//	res, err := resource.New("credentials", credentials.NewResource(store),
//	    resource.WithContentType("credentials", "1.0"),
//	)
//	if err != nil {
//	    return err
//	}
//	res.Register(r)
package resource
