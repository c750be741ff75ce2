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

package credentials

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("credentials: store closed")

// Store persists credentials.
//
// Get, Update and Delete fail with an error wrapping
// the ErrNotFound sentinel of the errors package for unknown usernames; Create fails with one
// wrapping ErrAlreadyExists for a taken username.
// Implementations are safe for concurrent use.
type Store interface {
	// List returns the credentials created within filter, ordered by
	// username.
	List(ctx context.Context, filter Filter) ([]Credential, error)
	Get(ctx context.Context, username string) (Credential, error)
	Create(ctx context.Context, cred Credential) error
	Update(ctx context.Context, username string, changes Changes) (Credential, error)
	Delete(ctx context.Context, username string) error
	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
	Close() error
}
