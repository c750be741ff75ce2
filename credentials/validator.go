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
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apierrors "github.com/rivaas-dev/basic-auth-service/errors"
	"github.com/rivaas-dev/basic-auth-service/middleware/basicauth"
)

// StoreValidator checks Basic credentials against a [Store].
type StoreValidator struct {
	store Store
	dummy []byte
}

var _ basicauth.Validator = (*StoreValidator)(nil)

// NewStoreValidator creates a validator backed by store. cost should match
// the cost used for stored hashes so unknown users take as long to reject
// as known ones; 0 means [bcrypt.DefaultCost].
func NewStoreValidator(store Store, cost int) (*StoreValidator, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("basic-auth-service/dummy"), cost)
	if err != nil {
		return nil, fmt.Errorf("creating dummy hash: %w", err)
	}
	return &StoreValidator{store: store, dummy: dummy}, nil
}

// IsValid reports whether password matches the stored hash of username.
// Unknown users are not an error.
func (v *StoreValidator) IsValid(ctx context.Context, username, password string) (bool, error) {
	c, err := v.store.Get(ctx, username)
	if errors.Is(err, apierrors.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(v.dummy, []byte(password))
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(password)) == nil, nil
}
