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

// Package manage implements the credential management commands. They
// work directly on the configured store, without going through the HTTP
// API, but reuse the credentials resource so validation and hashing match
// the API exactly.
package manage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli"

	"github.com/rivaas-dev/basic-auth-service/config"
	"github.com/rivaas-dev/basic-auth-service/credentials"
	apierrors "github.com/rivaas-dev/basic-auth-service/errors"
	"github.com/rivaas-dev/basic-auth-service/resource"
)

const (
	passwordFlagName    = "password"
	descriptionFlagName = "description"
	startDateFlagName   = "start-date"
	endDateFlagName     = "end-date"
	jsonFlagName        = "json"
)

// Opener returns the store and configuration for a command invocation.
// The returned store is closed when the command finishes.
type Opener func(ctx context.Context, c *cli.Context) (credentials.Store, *config.Config, error)

// env is what each command runs against.
type env struct {
	ctx   context.Context
	store credentials.Store
	cfg   *config.Config
	res   *credentials.Resource
	out   io.Writer
}

// Commands returns the management subcommands.
func Commands(open Opener) []cli.Command {
	return []cli.Command{
		{
			Name:      "add",
			Usage:     "create a credential; a password is generated when none is given",
			ArgsUsage: "<username>",
			Flags: []cli.Flag{
				cli.StringFlag{Name: passwordFlagName + ", p", Usage: "password (8 to 72 characters)"},
				cli.StringFlag{Name: descriptionFlagName + ", d", Usage: "free-form description"},
			},
			Action: run(open, add),
		},
		{
			Name:  "list",
			Usage: "list credentials, optionally filtered by creation date",
			Flags: []cli.Flag{
				cli.StringFlag{Name: startDateFlagName, Usage: "only credentials created at or after `DATE` (" + resource.DateFormat + ")"},
				cli.StringFlag{Name: endDateFlagName, Usage: "only credentials created at or before `DATE` (" + resource.DateFormat + ")"},
				cli.BoolFlag{Name: jsonFlagName, Usage: "print JSON instead of a table"},
			},
			Action: run(open, list),
		},
		{
			Name:      "show",
			Usage:     "show one credential",
			ArgsUsage: "<username>",
			Action:    run(open, show),
		},
		{
			Name:      "update",
			Usage:     "change the password and/or description of a credential",
			ArgsUsage: "<username>",
			Flags: []cli.Flag{
				cli.StringFlag{Name: passwordFlagName + ", p", Usage: "new password"},
				cli.StringFlag{Name: descriptionFlagName + ", d", Usage: "new description"},
			},
			Action: run(open, update),
		},
		{
			Name:      "remove",
			Aliases:   []string{"rm"},
			Usage:     "delete a credential",
			ArgsUsage: "<username>",
			Action:    run(open, remove),
		},
		{
			Name:      "check",
			Usage:     "check a username and password; exits with status 1 when invalid",
			ArgsUsage: "<username> <password>",
			Action:    run(open, check),
		},
	}
}

func run(open Opener, fn func(*env, *cli.Context) error) func(*cli.Context) error {
	return func(c *cli.Context) error {
		ctx := context.Background()

		store, cfg, err := open(ctx, c)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		res, err := credentials.NewResource(store, credentials.WithBcryptCost(cfg.Auth.BcryptCost))
		if err != nil {
			return err
		}

		return describe(fn(&env{
			ctx:   ctx,
			store: store,
			cfg:   cfg,
			res:   res,
			out:   c.App.Writer,
		}, c))
	}
}

// describe turns API errors into their client-facing message and field
// details.
func describe(err error) error {
	if err == nil {
		return nil
	}
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return err
	}
	apiErr := apierrors.ToAPIError(err)
	if apiErr.Kind == apierrors.KindInternal {
		return err
	}
	msg := apiErr.Message
	if details, ok := apiErr.Fields["details"]; ok {
		if b, jerr := json.Marshal(details); jerr == nil {
			msg += ": " + string(b)
		}
	}
	return cli.NewExitError(msg, 1)
}

func args(c *cli.Context, n int) ([]string, error) {
	if c.NArg() != n {
		return nil, cli.NewExitError(fmt.Sprintf("expected %d argument(s): %s", n, c.Command.ArgsUsage), 2)
	}
	return c.Args()[:n], nil
}

func payload(v any) (*resource.Payload, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return resource.NewPayload(raw), nil
}

func add(e *env, c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}

	password := c.String(passwordFlagName)
	generated := password == ""
	if generated {
		if password, err = credentials.GeneratePassword(credentials.DefaultPasswordLength); err != nil {
			return err
		}
	}

	body := map[string]string{"username": a[0], "password": password}
	if d := c.String(descriptionFlagName); d != "" {
		body["description"] = d
	}
	p, err := payload(body)
	if err != nil {
		return err
	}

	_, view, err := e.res.Create(e.ctx, p)
	if err != nil {
		return err
	}
	printView(e.out, view.(credentials.View))
	if generated {
		fmt.Fprintf(e.out, "%-12s %s\n", "password:", password)
	}
	return nil
}

func list(e *env, c *cli.Context) error {
	q := url.Values{}
	if v := c.String(startDateFlagName); v != "" {
		q.Set(resource.StartDateParam, v)
	}
	if v := c.String(endDateFlagName); v != "" {
		q.Set(resource.EndDateParam, v)
	}
	filter, err := resource.ParseDateFilter(q)
	if err != nil {
		return err
	}

	result, err := e.res.GetAll(e.ctx, filter)
	if err != nil {
		return err
	}
	views := result.([]credentials.View)

	if c.Bool(jsonFlagName) {
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{v.Username, v.Description, formatTime(v.CreatedAt), formatTime(v.UpdatedAt)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("USERNAME", "DESCRIPTION", "CREATED", "UPDATED").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			return style
		})
	fmt.Fprintln(e.out, t.Render())
	return nil
}

func show(e *env, c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	view, err := e.res.Get(e.ctx, a[0], nil)
	if err != nil {
		return err
	}
	printView(e.out, view.(credentials.View))
	return nil
}

func update(e *env, c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}

	body := map[string]string{}
	if c.IsSet(passwordFlagName) {
		body["password"] = c.String(passwordFlagName)
	}
	if c.IsSet(descriptionFlagName) {
		body["description"] = c.String(descriptionFlagName)
	}
	if len(body) == 0 {
		return cli.NewExitError("nothing to update: pass --password and/or --description", 2)
	}
	p, err := payload(body)
	if err != nil {
		return err
	}

	view, err := e.res.Update(e.ctx, a[0], p)
	if err != nil {
		return err
	}
	printView(e.out, view.(credentials.View))
	return nil
}

func remove(e *env, c *cli.Context) error {
	a, err := args(c, 1)
	if err != nil {
		return err
	}
	if _, err := e.res.Delete(e.ctx, a[0], nil); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "removed %s\n", a[0])
	return nil
}

func check(e *env, c *cli.Context) error {
	a, err := args(c, 2)
	if err != nil {
		return err
	}

	validator, err := credentials.NewStoreValidator(e.store, e.cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	ok, err := validator.IsValid(e.ctx, a[0], a[1])
	if err != nil {
		return err
	}
	if !ok {
		return cli.NewExitError("invalid", 1)
	}
	fmt.Fprintln(e.out, "valid")
	return nil
}

func printView(w io.Writer, v credentials.View) {
	fmt.Fprintf(w, "%-12s %s\n", "username:", v.Username)
	fmt.Fprintf(w, "%-12s %s\n", "description:", v.Description)
	fmt.Fprintf(w, "%-12s %s\n", "created:", formatTime(v.CreatedAt))
	fmt.Fprintf(w, "%-12s %s\n", "updated:", formatTime(v.UpdatedAt))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
