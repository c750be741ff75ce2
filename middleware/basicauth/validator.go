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

package basicauth

import (
	"context"
	"crypto/subtle"
)

// Validator checks a username and password pair.
// An error means the check could not be performed; the gate treats it as a
// rejection.
type Validator interface {
	IsValid(ctx context.Context, username, password string) (bool, error)
}

// ValidatorFunc adapts a function to [Validator].
type ValidatorFunc func(ctx context.Context, username, password string) (bool, error)

// IsValid calls f.
func (f ValidatorFunc) IsValid(ctx context.Context, username, password string) (bool, error) {
	return f(ctx, username, password)
}

// Allow returns a validator that accepts any credentials.
func Allow() Validator {
	return ValidatorFunc(func(context.Context, string, string) (bool, error) {
		return true, nil
	})
}

// Deny returns a validator that rejects all credentials.
func Deny() Validator {
	return ValidatorFunc(func(context.Context, string, string) (bool, error) {
		return false, nil
	})
}

// Users returns a validator backed by a static username to password table.
// Passwords are compared in constant time.
func Users(users map[string]string) Validator {
	table := make(map[string][]byte, len(users))
	for u, p := range users {
		table[u] = []byte(p)
	}

	return ValidatorFunc(func(_ context.Context, username, password string) (bool, error) {
		expected, ok := table[username]
		if !ok {
			return false, nil
		}
		return subtle.ConstantTimeCompare([]byte(password), expected) == 1, nil
	})
}
