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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type failingStore struct {
	*MemoryStore
}

func (failingStore) Get(context.Context, string) (Credential, error) {
	return Credential{}, errors.New("disk on fire")
}

func TestStoreValidator(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, Credential{Username: "user", PasswordHash: hash}))

	v, err := NewStoreValidator(store, bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		username string
		password string
		want     bool
	}{
		{"user", "pass", true},
		{"user", "wrong", false},
		{"foo", "bar", false},
		{"", "", false},
	}
	for _, tt := range tests {
		ok, err := v.IsValid(ctx, tt.username, tt.password)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "%s:%s", tt.username, tt.password)
	}
}

func TestStoreValidatorStoreError(t *testing.T) {
	t.Parallel()

	v, err := NewStoreValidator(failingStore{NewMemoryStore()}, bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := v.IsValid(context.Background(), "user", "pass")
	assert.False(t, ok)
	assert.EqualError(t, err, "disk on fire")
}

func TestGeneratePassword(t *testing.T) {
	t.Parallel()

	p, err := GeneratePassword(32)
	require.NoError(t, err)
	assert.Len(t, p, 32)
	for _, r := range p {
		assert.Contains(t, passwordAlphabet, string(r))
	}

	q, err := GeneratePassword(0)
	require.NoError(t, err)
	assert.Len(t, q, DefaultPasswordLength)
	assert.NotEqual(t, p, q)
}
