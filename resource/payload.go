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

package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	apierrors "github.com/rivaas-dev/basic-auth-service/errors"
)

// DefaultMaxBodyBytes limits request bodies read by [Validate].
const DefaultMaxBodyBytes int64 = 1 << 20

// ErrNoPayload is returned by [Payload.Decode] when the request had no body.
var ErrNoPayload = errors.New("no payload")

// Payload is the JSON body of a request. A nil *Payload means the request
// had no body.
type Payload struct {
	raw json.RawMessage
}

// NewPayload wraps raw JSON. It is mostly useful in tests.
func NewPayload(raw []byte) *Payload {
	return &Payload{raw: raw}
}

// Decode unmarshals the payload into v.
func (p *Payload) Decode(v any) error {
	if p == nil {
		return ErrNoPayload
	}
	return json.Unmarshal(p.raw, v)
}

// Value returns the payload decoded into generic JSON values, or nil for an
// absent payload.
func (p *Payload) Value() any {
	if p == nil {
		return nil
	}
	var v any
	if err := json.Unmarshal(p.raw, &v); err != nil {
		return nil
	}
	return v
}

// Raw returns the payload bytes.
func (p *Payload) Raw() json.RawMessage {
	if p == nil {
		return nil
	}
	return p.raw
}

// Validate checks a request against the allowed methods and returns its
// JSON payload.
//
// It fails with MethodNotAllowed when the method is not allowed. The body is
// parsed only when Content-Length is positive: a zero or unknown length, or
// an empty body, yields a nil payload. A body that does not parse fails with
// BadRequest "Invalid JSON payload".
func Validate(r *http.Request, allowed []string) (*Payload, error) {
	return validate(r, allowed, DefaultMaxBodyBytes)
}

func validate(r *http.Request, allowed []string, maxBytes int64) (*Payload, error) {
	if !slices.Contains(allowed, r.Method) {
		return nil, apierrors.MethodNotAllowed(r.Method, allowed)
	}

	if r.ContentLength <= 0 || r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	if r.ContentLength > maxBytes {
		return nil, tooLarge(maxBytes)
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	if int64(len(raw)) > maxBytes {
		return nil, tooLarge(maxBytes)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, apierrors.BadRequest("Invalid JSON payload")
	}

	return &Payload{raw: raw}, nil
}

func tooLarge(maxBytes int64) error {
	return apierrors.BadRequest("Request body exceeds %d bytes", maxBytes).With("max_bytes", maxBytes)
}
