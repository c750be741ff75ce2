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
	"context"
	"net/http"
)

// Operation is a backing operation of a resource.
type Operation int

const (
	OpGetAll Operation = iota + 1
	OpCreate
	OpGet
	OpUpdate
	OpDelete
)

// String returns the snake_case operation name.
func (op Operation) String() string {
	switch op {
	case OpGetAll:
		return "get_all"
	case OpCreate:
		return "create"
	case OpGet:
		return "get"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// collectionMethods and instanceMethods are the static method tables.
var (
	collectionMethods = map[string]Operation{
		http.MethodGet:  OpGetAll,
		http.MethodPost: OpCreate,
	}
	instanceMethods = map[string]Operation{
		http.MethodGet:    OpGet,
		http.MethodPut:    OpUpdate,
		http.MethodDelete: OpDelete,
	}
)

// Lister lists the collection.
type Lister interface {
	GetAll(ctx context.Context, filter DateFilter) (any, error)
}

// Creator creates an instance and returns its id and representation.
type Creator interface {
	Create(ctx context.Context, payload *Payload) (id string, content any, err error)
}

// Getter returns an instance.
type Getter interface {
	Get(ctx context.Context, id string, payload *Payload) (any, error)
}

// Updater updates an instance.
type Updater interface {
	Update(ctx context.Context, id string, payload *Payload) (any, error)
}

// Deleter deletes an instance.
type Deleter interface {
	Delete(ctx context.Context, id string, payload *Payload) (any, error)
}

// implements reports whether delegate provides op, and the name of the
// interface required for it.
func implements(delegate any, op Operation) (string, bool) {
	var ok bool
	var name string
	switch op {
	case OpGetAll:
		_, ok = delegate.(Lister)
		name = "Lister"
	case OpCreate:
		_, ok = delegate.(Creator)
		name = "Creator"
	case OpGet:
		_, ok = delegate.(Getter)
		name = "Getter"
	case OpUpdate:
		_, ok = delegate.(Updater)
		name = "Updater"
	case OpDelete:
		_, ok = delegate.(Deleter)
		name = "Deleter"
	}
	return name, ok
}
