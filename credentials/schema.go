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
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	apierrors "github.com/rivaas-dev/basic-auth-service/errors"
)

// createSchema requires at least one non-dot character in usernames so "."
// and ".." stay addressable as path segments.
const createSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"username": {
			"type": "string",
			"minLength": 1,
			"maxLength": 128,
			"pattern": "^[A-Za-z0-9._@-]*[A-Za-z0-9_@-][A-Za-z0-9._@-]*$"
		},
		"password": {"type": "string", "minLength": 8, "maxLength": 72},
		"description": {"type": "string", "maxLength": 512}
	},
	"required": ["username", "password"],
	"additionalProperties": false
}`

const updateSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"password": {"type": "string", "minLength": 8, "maxLength": 72},
		"description": {"type": "string", "maxLength": 512}
	},
	"minProperties": 1,
	"additionalProperties": false
}`

// schemas holds the compiled payload schemas.
type schemas struct {
	create *jsonschema.Schema
	update *jsonschema.Schema
}

func compileSchemas() (*schemas, error) {
	create, err := compileSchema("credentials-create.json", createSchema)
	if err != nil {
		return nil, err
	}
	update, err := compileSchema("credentials-update.json", updateSchema)
	if err != nil {
		return nil, err
	}
	return &schemas{create: create, update: update}, nil
}

func compileSchema(id, schemaJSON string) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("invalid schema JSON %s: %w", id, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(id, doc); err != nil {
		return nil, fmt.Errorf("adding schema resource %s: %w", id, err)
	}

	schema, err := compiler.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", id, err)
	}
	return schema, nil
}

// validatePayload checks raw JSON against schema. Violations are reported as
// an InvalidResourceDetails error carrying a "details" list.
func validatePayload(schema *jsonschema.Schema, raw []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return apierrors.InvalidDetails("payload is not valid JSON")
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("validating payload: %w", err)
	}

	var details []map[string]string
	collectSchemaErrors(verr, &details)

	return apierrors.InvalidDetails("Invalid resource details").With("details", details)
}

// collectSchemaErrors flattens the leaves of the validation error tree.
func collectSchemaErrors(verr *jsonschema.ValidationError, details *[]map[string]string) {
	if verr == nil {
		return
	}

	if len(verr.Causes) == 0 {
		*details = append(*details, map[string]string{
			"field":   strings.Join(verr.InstanceLocation, "."),
			"message": leafMessage(verr.Error()),
		})
		return
	}

	for _, cause := range verr.Causes {
		collectSchemaErrors(cause, details)
	}
}

// leafMessage drops the schema location header the validator prefixes
// messages with.
func leafMessage(msg string) string {
	lines := strings.Split(strings.TrimSpace(msg), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	return strings.TrimPrefix(last, "- ")
}
