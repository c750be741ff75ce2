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

// Command basic-auth-manage administers the credentials of a
// basic-auth-service store directly, without going through the HTTP API.
//
//	basic-auth-manage --config config.yaml add --description "ci" deploy-bot
//	basic-auth-manage list --start-date 2025-01-01-00-00
//	basic-auth-manage check deploy-bot "$PASSWORD"
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/rivaas-dev/basic-auth-service/config"
	"github.com/rivaas-dev/basic-auth-service/credentials"
	"github.com/rivaas-dev/basic-auth-service/internal/bootstrap"
	"github.com/rivaas-dev/basic-auth-service/internal/manage"
)

func main() {
	app := cli.NewApp()
	app.Name = "basic-auth-manage"
	app.Usage = "manage basic-auth-service credentials"
	app.Version = bootstrap.Version
	app.Flags = bootstrap.Flags()
	app.Commands = manage.Commands(open)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func open(ctx context.Context, c *cli.Context) (credentials.Store, *config.Config, error) {
	cfg, err := bootstrap.LoadConfig(ctx, c, nil)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.Driver == "memory" {
		return nil, nil, fmt.Errorf("database driver %q keeps nothing between runs; configure sqlite", cfg.Database.Driver)
	}
	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}
