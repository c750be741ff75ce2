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
	"maps"
)

// domainKinds is the closed set of errors ToAPIError understands.
var domainKinds = []struct {
	sentinel error
	kind     Kind
}{
	{ErrNotFound, KindNotFound},
	{ErrAlreadyExists, KindAlreadyExists},
	{ErrInvalidDetails, KindInvalidResourceDetails},
}

// ToAPIError maps err to an API error.
//
// An [*Error] anywhere in the chain is returned as is. Errors wrapping one
// of the domain sentinels map to their kind, keeping the domain message and
// any [ResourceError] fields. Every other error maps to [Internal].
func ToAPIError(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	for _, dk := range domainKinds {
		if !errors.Is(err, dk.sentinel) {
			continue
		}

		mapped := New(dk.kind, err.Error())
		mapped.cause = err

		var resErr *ResourceError
		if errors.As(err, &resErr) && len(resErr.Fields) > 0 {
			mapped.Fields = maps.Clone(resErr.Fields)
		}

		return mapped
	}

	return Internal(err)
}
