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
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Kind is the stable, machine-readable error code sent to clients.
type Kind string

const (
	KindBadRequest             Kind = "BadRequest"
	KindMethodNotAllowed       Kind = "MethodNotAllowed"
	KindNotFound               Kind = "NotFound"
	KindAlreadyExists          Kind = "ResourceAlreadyExists"
	KindInvalidResourceDetails Kind = "InvalidResourceDetails"
	KindInternal               Kind = "InternalServerError"
)

// Status returns the HTTP status code associated with the kind.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest, KindInvalidResourceDetails:
		return http.StatusBadRequest
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is an API error ready to be rendered by a [Formatter].
type Error struct {
	Kind    Kind
	Status  int
	Message string

	// Fields are extra, exception-specific members of the response body.
	Fields map[string]any

	// Headers are added to the response (e.g. Allow for 405).
	Headers http.Header

	cause error
}

// New creates an error of the given kind. The status follows the kind.
func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Status:  kind.Status(),
		Message: message,
	}
}

// BadRequest creates a [KindBadRequest] error.
func BadRequest(format string, args ...any) *Error {
	return New(KindBadRequest, fmt.Sprintf(format, args...))
}

// MethodNotAllowed creates a [KindMethodNotAllowed] error listing the
// allowed methods in sorted order. The Allow header is set accordingly.
func MethodNotAllowed(method string, allowed []string) *Error {
	sorted := slices.Sorted(slices.Values(allowed))
	joined := strings.Join(sorted, ", ")

	e := New(KindMethodNotAllowed, fmt.Sprintf("Method %s not allowed. Allowed methods: %s", method, joined))
	e.Fields = map[string]any{
		"method":          method,
		"allowed_methods": sorted,
	}
	e.Headers = http.Header{"Allow": []string{joined}}

	return e
}

// Internal creates the generic internal error. Its message never contains
// details of the cause.
func Internal(cause error) *Error {
	e := New(KindInternal, "Internal server error")
	e.cause = cause
	return e
}

// With adds a field to the response body and returns e.
func (e *Error) With(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus implements [ErrorType].
func (e *Error) HTTPStatus() int {
	return e.Status
}

// Code implements [ErrorCode].
func (e *Error) Code() string {
	return string(e.Kind)
}

// Details implements [ErrorDetails].
func (e *Error) Details() any {
	if len(e.Fields) == 0 {
		return nil
	}
	return maps.Clone(e.Fields)
}
