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

// Package errors defines the error taxonomy of the API and turns any error
// into a structured HTTP response.
//
// Three layers cooperate:
//
//   - Domain sentinels ([ErrNotFound], [ErrAlreadyExists], [ErrInvalidDetails])
//     are returned by stores and resource delegates, optionally wrapped in a
//     [ResourceError] that carries extra fields.
//   - [ToAPIError] maps a closed set of known errors to an [*Error] with a
//     stable [Kind], an HTTP status and a human message. Anything it does not
//     recognize becomes an internal error whose message never includes the
//     original error text.
//   - A [Formatter] renders the mapped error. [Simple] produces
//     {"error": "<Kind>", "message": "..."}; [RFC9457] produces problem details.
//
// Example:
//
//	formatter := errors.NewSimple()
//	if err := store.Delete(ctx, id); err != nil {
//	    errors.Write(w, req, formatter, err)
//	    return
//	}
package errors
