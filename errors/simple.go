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

package errors

import (
	"net/http"
)

// Simple formats errors as flat JSON objects:
//
//	{"error": "BadRequest", "message": "Invalid JSON payload", ...fields}
//
// Fields named "error" or "message" never override the standard members.
type Simple struct{}

// Format maps err with [ToAPIError] and renders it.
func (f *Simple) Format(_ *http.Request, err error) Response {
	apiErr := ToAPIError(err)

	body := make(map[string]any, len(apiErr.Fields)+2)
	for k, v := range apiErr.Fields {
		body[k] = v
	}
	body["error"] = apiErr.Code()
	body["message"] = apiErr.Message

	return Response{
		Status:      apiErr.HTTPStatus(),
		ContentType: "application/json; charset=utf-8",
		Body:        body,
		Headers:     apiErr.Headers.Clone(),
	}
}
