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
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// RFC9457 formats errors as RFC 9457 Problem Details.
// It produces responses with Content-Type "application/problem+json".
type RFC9457 struct {
	// BaseURL is prepended to problem type slugs to create full URIs.
	// Example: "https://api.example.com/problems" + "/not-found"
	BaseURL string

	// ErrorIDGenerator generates unique IDs for error tracking.
	// If nil, a UUID is used.
	ErrorIDGenerator func() string

	// DisableErrorID disables automatic error ID generation.
	DisableErrorID bool
}

// ProblemDetail represents an RFC 9457 problem detail.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"-"`
}

// MarshalJSON includes extensions inline, protecting the reserved members.
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"type":   p.Type,
		"title":  p.Title,
		"status": p.Status,
	}
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}
	for k, v := range p.Extensions {
		if k != "type" && k != "title" && k != "status" && k != "detail" && k != "instance" {
			m[k] = v
		}
	}

	return json.Marshal(m)
}

// Format maps err with [ToAPIError] and renders it as problem details.
// The error kind is exposed as the "code" extension and error fields are
// added as further extensions.
func (f *RFC9457) Format(req *http.Request, err error) Response {
	apiErr := ToAPIError(err)
	status := apiErr.HTTPStatus()

	p := ProblemDetail{
		Type:       f.problemType(apiErr),
		Title:      http.StatusText(status),
		Status:     status,
		Detail:     apiErr.Message,
		Extensions: make(map[string]any, len(apiErr.Fields)+2),
	}
	if req != nil && req.URL != nil {
		p.Instance = req.URL.Path
	}

	for k, v := range apiErr.Fields {
		p.Extensions[k] = v
	}
	p.Extensions["code"] = apiErr.Code()

	if !f.DisableErrorID {
		if f.ErrorIDGenerator != nil {
			p.Extensions["error_id"] = f.ErrorIDGenerator()
		} else {
			p.Extensions["error_id"] = uuid.NewString()
		}
	}

	return Response{
		Status:      status,
		ContentType: "application/problem+json; charset=utf-8",
		Body:        p,
		Headers:     apiErr.Headers.Clone(),
	}
}

func (f *RFC9457) problemType(e *Error) string {
	if f.BaseURL == "" {
		return "about:blank"
	}
	return strings.TrimSuffix(f.BaseURL, "/") + "/" + slug(e.Kind)
}

// slug converts a kind such as "ResourceAlreadyExists" to
// "resource-already-exists".
func slug(k Kind) string {
	var b strings.Builder
	for i, r := range string(k) {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
