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
	"time"

	"github.com/rivaas-dev/basic-auth-service/resource"
)

// Credential is a stored username and password hash.
type Credential struct {
	Username     string
	PasswordHash []byte
	Description  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// View is the public representation of a credential.
type View struct {
	Username    string    `json:"username"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// View returns the public representation of c.
func (c Credential) View() View {
	return View{
		Username:    c.Username,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// Filter bounds a listing by creation time.
type Filter = resource.DateFilter

// Changes describes an update. Nil fields are left unchanged.
type Changes struct {
	PasswordHash []byte
	Description  *string
	UpdatedAt    time.Time
}
