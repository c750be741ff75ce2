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

// Package credentials manages the username and password pairs checked by the
// auth gate.
//
// It provides the [Store] abstraction with an in-memory and a SQLite
// implementation, the [Resource] delegate that exposes credentials through
// the generic REST engine, and [StoreValidator], the store-backed validator
// used by the Basic-Auth gate.
//
// Passwords are stored as bcrypt hashes and are write-only: no
// representation returned by this package contains them.
package credentials
