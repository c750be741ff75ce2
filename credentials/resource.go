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
	"time"

	"golang.org/x/crypto/bcrypt"

	apierrors "github.com/rivaas-dev/basic-auth-service/errors"
	"github.com/rivaas-dev/basic-auth-service/resource"
)

// Name is the path segment credentials are exposed under.
const Name = "credentials"

// Option configures a [Resource].
type Option func(*Resource)

// WithBcryptCost sets the bcrypt cost for new password hashes.
// Default: [bcrypt.DefaultCost].
func WithBcryptCost(cost int) Option {
	return func(r *Resource) {
		r.cost = cost
	}
}

// WithClock sets the time source for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(r *Resource) {
		if now != nil {
			r.now = now
		}
	}
}

// Resource is the REST delegate for credentials. It implements every
// operation of the resource engine.
type Resource struct {
	store   Store
	cost    int
	now     func() time.Time
	schemas *schemas
}

var (
	_ resource.Lister  = (*Resource)(nil)
	_ resource.Creator = (*Resource)(nil)
	_ resource.Getter  = (*Resource)(nil)
	_ resource.Updater = (*Resource)(nil)
	_ resource.Deleter = (*Resource)(nil)
)

// NewResource creates the credentials delegate on top of store.
func NewResource(store Store, opts ...Option) (*Resource, error) {
	s, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	r := &Resource{
		store:   store,
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
		schemas: s,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cost < bcrypt.MinCost || r.cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", r.cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return r, nil
}

type createRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Description string `json:"description"`
}

type updateRequest struct {
	Password    *string `json:"password"`
	Description *string `json:"description"`
}

// GetAll lists credentials created within filter.
func (r *Resource) GetAll(ctx context.Context, filter resource.DateFilter) (any, error) {
	list, err := r.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(list))
	for _, c := range list {
		views = append(views, c.View())
	}
	return views, nil
}

// Create stores a new credential. The username becomes the instance id.
func (r *Resource) Create(ctx context.Context, payload *resource.Payload) (string, any, error) {
	if payload == nil {
		return "", nil, apierrors.InvalidDetails("Request body required")
	}
	if err := validatePayload(r.schemas.create, payload.Raw()); err != nil {
		return "", nil, err
	}

	var req createRequest
	if err := payload.Decode(&req); err != nil {
		return "", nil, apierrors.InvalidDetails("Invalid resource details")
	}

	hash, err := r.hash(req.Password)
	if err != nil {
		return "", nil, err
	}

	now := r.timestamp()
	cred := Credential{
		Username:     req.Username,
		PasswordHash: hash,
		Description:  req.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.store.Create(ctx, cred); err != nil {
		return "", nil, err
	}

	return cred.Username, cred.View(), nil
}

// Get returns one credential.
func (r *Resource) Get(ctx context.Context, id string, _ *resource.Payload) (any, error) {
	c, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.View(), nil
}

// Update changes the password and/or description of a credential.
func (r *Resource) Update(ctx context.Context, id string, payload *resource.Payload) (any, error) {
	if payload == nil {
		return nil, apierrors.InvalidDetails("Request body required")
	}
	if err := validatePayload(r.schemas.update, payload.Raw()); err != nil {
		return nil, err
	}

	var req updateRequest
	if err := payload.Decode(&req); err != nil {
		return nil, apierrors.InvalidDetails("Invalid resource details")
	}

	changes := Changes{
		Description: req.Description,
		UpdatedAt:   r.timestamp(),
	}
	if req.Password != nil {
		hash, err := r.hash(*req.Password)
		if err != nil {
			return nil, err
		}
		changes.PasswordHash = hash
	}

	c, err := r.store.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	return c.View(), nil
}

// Delete removes a credential.
func (r *Resource) Delete(ctx context.Context, id string, _ *resource.Payload) (any, error) {
	if err := r.store.Delete(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{}, nil
}

func (r *Resource) hash(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apierrors.InvalidDetails("Password must not exceed 72 bytes")
	}
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return hash, nil
}

// timestamp returns the current time at the second precision stores keep.
func (r *Resource) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Second)
}
