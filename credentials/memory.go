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
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps credentials in memory. It backs tests and the
// "memory" database driver.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[string]Credential
	closed bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Credential)}
}

// List implements [Store].
func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	list := make([]Credential, 0, len(s.items))
	for _, c := range s.items {
		if filter.Contains(c.CreatedAt) {
			list = append(list, clone(c))
		}
	}
	slices.SortFunc(list, func(a, b Credential) int {
		return strings.Compare(a.Username, b.Username)
	})

	return list, nil
}

// Get implements [Store].
func (s *MemoryStore) Get(ctx context.Context, username string) (Credential, error) {
	if err := ctx.Err(); err != nil {
		return Credential{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Credential{}, ErrClosed
	}

	c, ok := s.items[username]
	if !ok {
		return Credential{}, notFound(username)
	}
	return clone(c), nil
}

// Create implements [Store].
func (s *MemoryStore) Create(ctx context.Context, cred Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, ok := s.items[cred.Username]; ok {
		return alreadyExists(cred.Username)
	}
	s.items[cred.Username] = clone(cred)
	return nil
}

// Update implements [Store].
func (s *MemoryStore) Update(ctx context.Context, username string, changes Changes) (Credential, error) {
	if err := ctx.Err(); err != nil {
		return Credential{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Credential{}, ErrClosed
	}

	c, ok := s.items[username]
	if !ok {
		return Credential{}, notFound(username)
	}
	if changes.PasswordHash != nil {
		c.PasswordHash = slices.Clone(changes.PasswordHash)
	}
	if changes.Description != nil {
		c.Description = *changes.Description
	}
	c.UpdatedAt = changes.UpdatedAt
	s.items[username] = c

	return clone(c), nil
}

// Delete implements [Store].
func (s *MemoryStore) Delete(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, ok := s.items[username]; !ok {
		return notFound(username)
	}
	delete(s.items, username)
	return nil
}

// Ping implements [Store].
func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close implements [Store].
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func clone(c Credential) Credential {
	c.PasswordHash = slices.Clone(c.PasswordHash)
	return c
}
