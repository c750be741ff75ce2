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
	"errors"
	"fmt"
)

// Domain errors raised by stores and resource delegates.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidDetails = errors.New("invalid resource details")
)

// ResourceError wraps a domain sentinel with a client-facing message and
// optional extra fields.
//
// Example:
//
//	return errors.NotFound("credentials for user %q not found", username).
//	    With("username", username)
type ResourceError struct {
	Err     error
	Message string
	Fields  map[string]any
}

// NotFound wraps [ErrNotFound].
func NotFound(format string, args ...any) *ResourceError {
	return &ResourceError{Err: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists wraps [ErrAlreadyExists].
func AlreadyExists(format string, args ...any) *ResourceError {
	return &ResourceError{Err: ErrAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// InvalidDetails wraps [ErrInvalidDetails].
func InvalidDetails(format string, args ...any) *ResourceError {
	return &ResourceError{Err: ErrInvalidDetails, Message: fmt.Sprintf(format, args...)}
}

// With adds a field and returns e.
func (e *ResourceError) With(key string, value any) *ResourceError {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

func (e *ResourceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}
