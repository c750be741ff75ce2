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

// Package config loads the service configuration.
//
// Values come from layered sources merged in order, later sources
// overriding earlier ones: a configuration file (YAML, TOML or JSON), a
// Consul key, BASIC_AUTH_ prefixed environment variables and explicit
// overrides such as command line flags. Keys are case-insensitive. Fields
// left empty by every source take the value of their default tag, and the
// result is validated before it is returned.
//
// Example:
//
//	cfg, err := config.Load(ctx,
//	    config.WithFile("/etc/basic-auth/config.yaml"),
//	    config.WithEnv(config.EnvPrefix),
//	    config.WithValues(map[string]any{"server.addr": addr}),
//	)
package config

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// EnvPrefix is the prefix of configuration environment variables.
const EnvPrefix = "BASIC_AUTH_"

// Config is the service configuration.
type Config struct {
	Server   ServerConfig   `config:"server"`
	API      APIConfig      `config:"api"`
	Auth     AuthConfig     `config:"auth"`
	Database DatabaseConfig `config:"database"`
	Logging  LoggingConfig  `config:"logging"`
	Metrics  MetricsConfig  `config:"metrics"`
	Tracing  TracingConfig  `config:"tracing"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr              string        `config:"addr" default:":8080" validate:"required"`
	ShutdownTimeout   time.Duration `config:"shutdowntimeout" default:"15s" validate:"gt=0"`
	ReadHeaderTimeout time.Duration `config:"readheadertimeout" default:"10s" validate:"gt=0"`
	MaxBodyBytes      int64         `config:"maxbodybytes" default:"1048576" validate:"gt=0"`
	RequestID         string        `config:"requestid" default:"uuid" validate:"oneof=uuid ulid"`
}

// APIConfig configures the management API contract.
type APIConfig struct {
	// Profile and Version are required media type parameters when set.
	Profile string `config:"profile"`
	Version string `config:"version"`

	ErrorFormat    string `config:"errorformat" default:"simple" validate:"oneof=simple problem"`
	ProblemBaseURL string `config:"problembaseurl" validate:"omitempty,url"`
}

// AuthConfig configures the auth-check surface.
type AuthConfig struct {
	Realm      string `config:"realm" default:"basic-auth-service" validate:"required,excludesall=\""`
	Path       string `config:"path" default:"/auth-check" validate:"startswith=/"`
	BcryptCost int    `config:"bcryptcost" default:"10" validate:"min=4,max=31"`
}

// DatabaseConfig selects the credential store.
type DatabaseConfig struct {
	Driver string `config:"driver" default:"sqlite" validate:"oneof=sqlite memory"`
	DSN    string `config:"dsn" default:"basic-auth.db"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Format string `config:"format" default:"json" validate:"oneof=json text console"`
	Level  string `config:"level" default:"info" validate:"oneof=debug info warn error"`
}

// MetricsConfig configures Prometheus exposition.
type MetricsConfig struct {
	Disabled bool   `config:"disabled"`
	Path     string `config:"path" default:"/metrics" validate:"startswith=/"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Exporter string `config:"exporter" default:"none" validate:"oneof=none stdout otlp otlp-grpc"`
	// Endpoint is the OTLP collector address, e.g. "localhost:4318".
	Endpoint string `config:"endpoint" validate:"required_if=Exporter otlp,required_if=Exporter otlp-grpc"`
	// SampleRatio of 0 is replaced by the default; use a tiny ratio to
	// sample almost nothing.
	SampleRatio float64 `config:"sampleratio" default:"1" validate:"gte=0,lte=1"`
	Insecure    bool    `config:"insecure"`
}

// Option adds a source to [Load].
type Option func(*loader) error

type loader struct {
	sources []Source
}

// WithSource adds a custom source.
func WithSource(src Source) Option {
	return func(l *loader) error {
		if src == nil {
			return NewError("options", "load", errors.New("source cannot be nil"))
		}
		l.sources = append(l.sources, src)
		return nil
	}
}

// WithFile reads a YAML, TOML or JSON file. An empty path is ignored.
func WithFile(path string) Option {
	return func(l *loader) error {
		if path != "" {
			l.sources = append(l.sources, NewFile(path))
		}
		return nil
	}
}

// WithConsul reads a YAML document from a Consul key. An empty key is
// ignored.
func WithConsul(key string) Option {
	return WithConsulKV(key, nil)
}

// WithConsulKV is [WithConsul] with an explicit KV client.
func WithConsulKV(key string, kv ConsulKV) Option {
	return func(l *loader) error {
		if key == "" {
			return nil
		}
		src, err := NewConsul(key, kv)
		if err != nil {
			return NewError("consul:"+key, "load", err)
		}
		l.sources = append(l.sources, src)
		return nil
	}
}

// WithEnv reads environment variables starting with prefix.
func WithEnv(prefix string) Option {
	return WithSource(NewEnv(prefix))
}

// WithValues applies overrides keyed by dotted paths. Nil and empty string
// values are skipped so unset flags do not clear lower layers.
func WithValues(values map[string]any) Option {
	return func(l *loader) error {
		set := make(map[string]any, len(values))
		for k, v := range values {
			if v == nil {
				continue
			}
			if s, ok := v.(string); ok && s == "" {
				continue
			}
			set[k] = v
		}
		l.sources = append(l.sources, NewValues(set))
		return nil
	}
}

// Load merges the sources, decodes the result, applies defaults and
// validates it.
func Load(ctx context.Context, opts ...Option) (*Config, error) {
	l := &loader{}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	values := make(map[string]any)
	for _, src := range l.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		conf, err := src.Load(ctx)
		if err != nil {
			return nil, NewError(src.Name(), "load", err)
		}
		if err := mergo.Map(&values, normalizeMapKeys(conf), mergo.WithOverride); err != nil {
			return nil, NewError(src.Name(), "merge", err)
		}
	}

	cfg := &Config{}
	if err := bind(values, cfg); err != nil {
		return nil, NewError("binding", "decode", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	if err := applyDefaults(cfg); err != nil {
		panic(err)
	}
	return cfg
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its validate tags.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.TrimPrefix(strings.ToLower(fe.Namespace()), "config.")
		return NewFieldError("validation", field, "validate",
			fmt.Errorf("failed on %q (value %v)", fe.Tag(), fe.Value()))
	}
	return NewError("validation", "validate", err)
}

func bind(values map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		WeaklyTypedInput: true,
		Result:           cfg,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("decoding configuration: %w", err)
	}

	if err := applyDefaults(cfg); err != nil {
		return fmt.Errorf("applying defaults: %w", err)
	}
	return nil
}

// normalizeMapKeys lower-cases keys recursively for case-insensitive merging.
func normalizeMapKeys(m map[string]any) map[string]any {
	normalized := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = normalizeMapKeys(nested)
		}
		normalized[strings.ToLower(k)] = v
	}
	return normalized
}

// applyDefaults sets zero-valued fields from their default tag.
func applyDefaults(target any) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to a struct")
	}
	return setDefaults(val.Elem())
}

func setDefaults(val reflect.Value) error {
	typ := val.Type()

	for i := range val.NumField() {
		field := val.Field(i)
		fieldType := typ.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := setDefaults(field); err != nil {
				return err
			}
			continue
		}

		defaultTag := fieldType.Tag.Get("default")
		if defaultTag == "" || !field.IsZero() {
			continue
		}
		if err := setDefaultValue(field, defaultTag); err != nil {
			return fmt.Errorf("default for field %s: %w", fieldType.Name, err)
		}
	}

	return nil
}

func setDefaultValue(field reflect.Value, defaultVal string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(defaultVal)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := cast.ToDurationE(defaultVal)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := cast.ToInt64E(defaultVal)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(defaultVal)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := cast.ToBoolE(defaultVal)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported type for default tag: %s", field.Kind())
	}
	return nil
}
