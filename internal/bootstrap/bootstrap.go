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

// Package bootstrap turns command line flags into the service's
// configuration, logger, tracing provider and credential store. It is
// shared by the server and the management binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/rivaas-dev/basic-auth-service/config"
	"github.com/rivaas-dev/basic-auth-service/credentials"
	"github.com/rivaas-dev/basic-auth-service/logging"
	"github.com/rivaas-dev/basic-auth-service/tracing"
)

// Flag names shared by both binaries.
const (
	ConfigFlagName    = "config"
	ConsulKeyFlagName = "consul-key"
	LogLevelFlagName  = "log-level"
	DatabaseFlagName  = "database"
)

// Version is set at build time with -ldflags "-X ...bootstrap.Version=...".
var Version = "dev"

// Flags returns the flags every binary accepts.
func Flags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   ConfigFlagName + ", c",
			Usage:  "path to a YAML, TOML or JSON configuration file",
			EnvVar: "BASIC_AUTH_CONFIG",
		},
		cli.StringFlag{
			Name:   ConsulKeyFlagName,
			Usage:  "Consul KV key holding a YAML configuration document",
			EnvVar: "BASIC_AUTH_CONSUL_KEY",
		},
		cli.StringFlag{
			Name:  LogLevelFlagName,
			Usage: "minimum log level (debug, info, warn, error)",
		},
		cli.StringFlag{
			Name:  DatabaseFlagName,
			Usage: "SQLite database path, overrides database.dsn",
		},
	}
}

// LoadConfig loads the configuration layers in order: file, Consul, the
// BASIC_AUTH_ environment and finally flags. overrides holds extra
// flag-derived values keyed by dotted path.
func LoadConfig(ctx context.Context, c *cli.Context, overrides map[string]any) (*config.Config, error) {
	values := map[string]any{
		"logging.level": c.GlobalString(LogLevelFlagName),
		"database.dsn":  c.GlobalString(DatabaseFlagName),
	}
	for k, v := range overrides {
		values[k] = v
	}

	cfg, err := config.Load(ctx,
		config.WithFile(c.GlobalString(ConfigFlagName)),
		config.WithConsul(c.GlobalString(ConsulKeyFlagName)),
		config.WithEnv(config.EnvPrefix),
		config.WithValues(values),
	)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the logger described by cfg, writing to stderr.
func NewLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(
		logging.WithHandlerType(logging.HandlerType(cfg.Format)),
		logging.WithLevel(level),
		logging.WithOutput(os.Stderr),
		logging.WithServiceName("basic-auth-service"),
		logging.WithServiceVersion(Version),
	)
}

// NewTracing builds the tracing provider, nil when tracing is off.
func NewTracing(ctx context.Context, cfg config.TracingConfig) (*tracing.Provider, error) {
	if cfg.Exporter == string(tracing.NoneExporter) {
		return nil, nil
	}
	return tracing.New(ctx,
		tracing.WithExporter(tracing.Exporter(cfg.Exporter)),
		tracing.WithOTLPEndpoint(cfg.Endpoint, cfg.Insecure),
		tracing.WithSampleRatio(cfg.SampleRatio),
		tracing.WithServiceVersion(Version),
		tracing.WithOutput(os.Stderr),
	)
}

// OpenStore opens the configured credential store.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (credentials.Store, error) {
	switch cfg.Driver {
	case "memory":
		return credentials.NewMemoryStore(), nil
	case "sqlite":
		store, err := credentials.OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store %s: %w", cfg.DSN, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
