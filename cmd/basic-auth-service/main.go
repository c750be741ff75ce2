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

// Command basic-auth-service serves the credentials management API and the
// Basic authentication check endpoint.
//
//	basic-auth-service --config /etc/basic-auth/config.yaml --addr :8080
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/rivaas-dev/basic-auth-service/app"
	"github.com/rivaas-dev/basic-auth-service/internal/bootstrap"
)

const addrFlagName = "addr"

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = app.ServiceName
	cliApp.Usage = "credential store and Basic authentication service"
	cliApp.Version = bootstrap.Version
	cliApp.Flags = append(bootstrap.Flags(),
		cli.StringFlag{
			Name:  addrFlagName,
			Usage: "listen address, overrides server.addr",
		},
	)
	cliApp.Action = serve

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.LoadConfig(ctx, c, map[string]any{
		"server.addr": c.String(addrFlagName),
	})
	if err != nil {
		return err
	}

	logger, err := bootstrap.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}

	tp, err := bootstrap.NewTracing(ctx, cfg.Tracing)
	if err != nil {
		return err
	}

	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing store", "error", err)
		}
	}()

	opts := []app.Option{
		app.WithLogger(logger),
		app.WithVersion(bootstrap.Version),
	}
	if tp != nil {
		opts = append(opts, app.WithTracing(tp))
	}

	a, err := app.New(cfg, store, opts...)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
