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

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/consul/api"
)

// Source provides raw configuration values as a nested map.
type Source interface {
	// Name identifies the source in errors.
	Name() string
	Load(ctx context.Context) (map[string]any, error)
}

// Format is a configuration file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath detects the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}
}

func decode(format Format, data []byte) (map[string]any, error) {
	conf := make(map[string]any)
	if len(strings.TrimSpace(string(data))) == 0 {
		return conf, nil
	}

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &conf)
	case FormatTOML:
		err = toml.Unmarshal(data, &conf)
	case FormatJSON:
		err = json.Unmarshal(data, &conf)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return conf, nil
}

// fileSource loads a YAML, TOML or JSON file.
type fileSource struct {
	path string
}

// NewFile creates a source reading path. The format follows the extension.
func NewFile(path string) Source {
	return &fileSource{path: path}
}

func (f *fileSource) Name() string {
	return "file:" + f.path
}

func (f *fileSource) Load(context.Context) (map[string]any, error) {
	format, err := FormatFromPath(f.path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	conf, err := decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	return conf, nil
}

// ConsulKV is the subset of the Consul KV API used by the Consul source.
type ConsulKV interface {
	Get(key string, q *api.QueryOptions) (*api.KVPair, *api.QueryMeta, error)
}

// consulSource loads a YAML (or JSON) document from a Consul key.
type consulSource struct {
	key string
	kv  ConsulKV
}

// NewConsul creates a source reading key from Consul. A nil kv uses a client
// configured from the CONSUL_HTTP_ADDR and CONSUL_HTTP_TOKEN environment
// variables.
func NewConsul(key string, kv ConsulKV) (Source, error) {
	if kv == nil {
		client, err := api.NewClient(api.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("creating consul client: %w", err)
		}
		kv = client.KV()
	}
	return &consulSource{key: key, kv: kv}, nil
}

func (c *consulSource) Name() string {
	return "consul:" + c.key
}

// Load returns an empty map when the key does not exist.
func (c *consulSource) Load(ctx context.Context) (map[string]any, error) {
	pair, _, err := c.kv.Get(c.key, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("getting consul key: %w", err)
	}
	if pair == nil {
		return make(map[string]any), nil
	}

	conf, err := decode(FormatYAML, pair.Value)
	if err != nil {
		return nil, fmt.Errorf("decoding consul value: %w", err)
	}
	return conf, nil
}

// envSource loads prefixed environment variables.
type envSource struct {
	prefix  string
	environ func() []string
}

// NewEnv creates a source from environment variables starting with prefix.
// The rest of the name is lower-cased and split on underscores into nested
// keys:
//
//	BASIC_AUTH_SERVER_ADDR=:9000   -> server.addr = ":9000"
//	BASIC_AUTH_DATABASE_DRIVER=memory -> database.driver = "memory"
func NewEnv(prefix string) Source {
	return &envSource{prefix: prefix, environ: os.Environ}
}

func (e *envSource) Name() string {
	return "env:" + e.prefix
}

func (e *envSource) Load(context.Context) (map[string]any, error) {
	conf := make(map[string]any)

	for _, env := range e.environ() {
		if !strings.HasPrefix(env, e.prefix) {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(env, e.prefix), "=")
		if !ok {
			continue
		}

		parts := make([]string, 0, 2)
		for _, p := range strings.Split(strings.ToLower(strings.TrimSpace(key)), "_") {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		setPath(conf, parts, strings.TrimSpace(value))
	}

	return conf, nil
}

// valuesSource holds explicit overrides keyed by dotted paths.
type valuesSource struct {
	values map[string]any
}

// NewValues creates a source from dotted keys, e.g. "server.addr".
func NewValues(values map[string]any) Source {
	return &valuesSource{values: values}
}

func (v *valuesSource) Name() string {
	return "values"
}

func (v *valuesSource) Load(context.Context) (map[string]any, error) {
	conf := make(map[string]any)
	for k, val := range v.values {
		setPath(conf, strings.Split(strings.ToLower(k), "."), val)
	}
	return conf, nil
}

// setPath stores value under the nested key path, replacing scalars that
// stand in the way.
func setPath(conf map[string]any, path []string, value any) {
	current := conf
	for _, part := range path[:len(path)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}
