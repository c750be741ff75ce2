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

package manage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"

	"github.com/rivaas-dev/basic-auth-service/config"
	"github.com/rivaas-dev/basic-auth-service/credentials"
)

func TestMain(m *testing.M) {
	// exit errors are asserted, not acted on
	cli.OsExiter = func(int) {}
	cli.ErrWriter = io.Discard
	os.Exit(m.Run())
}

// sharedStore survives the Close at the end of each command.
type sharedStore struct {
	*credentials.MemoryStore
}

func (sharedStore) Close() error { return nil }

func newCLI(t *testing.T) (func(args ...string) (string, error), *credentials.MemoryStore) {
	t.Helper()

	store := credentials.NewMemoryStore()
	cfg := config.Default()
	cfg.Auth.BcryptCost = 4

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		app := cli.NewApp()
		app.Name = "basic-auth-manage"
		app.Writer = &out
		app.ErrWriter = &out
		app.ExitErrHandler = func(*cli.Context, error) {}
		app.Commands = Commands(func(context.Context, *cli.Context) (credentials.Store, *config.Config, error) {
			return sharedStore{store}, cfg, nil
		})
		err := app.Run(append([]string{"basic-auth-manage"}, args...))
		return out.String(), err
	}
	return run, store
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var coder cli.ExitCoder
	require.ErrorAs(t, err, &coder)
	return coder.ExitCode()
}

func TestAddShowCheck(t *testing.T) {
	t.Parallel()
	run, _ := newCLI(t)

	out, err := run("add", "--password", "password1", "--description", "ci runner", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "ci runner")
	assert.NotContains(t, out, "password1")

	out, err = run("show", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "ci runner")

	out, err = run("check", "alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	_, err = run("check", "alice", "wrong-password")
	assert.Equal(t, 1, exitCode(t, err))
}

func TestAddGeneratesPassword(t *testing.T) {
	t.Parallel()
	run, store := newCLI(t)

	out, err := run("add", "bob")
	require.NoError(t, err)

	var password string
	for _, line := range bytes.Split([]byte(out), []byte("\n")) {
		if after, ok := bytes.CutPrefix(line, []byte("password:")); ok {
			password = string(bytes.TrimSpace(after))
		}
	}
	require.Len(t, password, credentials.DefaultPasswordLength)

	_, err = store.Get(t.Context(), "bob")
	require.NoError(t, err)

	_, err = run("check", "bob", password)
	require.NoError(t, err)
}

func TestAddErrors(t *testing.T) {
	t.Parallel()
	run, _ := newCLI(t)

	_, err := run("add")
	assert.Equal(t, 2, exitCode(t, err))

	_, err = run("add", "--password", "short", "carol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid resource details")
	assert.Contains(t, err.Error(), "password")

	_, err = run("add", "--password", "password1", "carol")
	require.NoError(t, err)
	_, err = run("add", "--password", "password1", "carol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exist")
}

func TestList(t *testing.T) {
	t.Parallel()
	run, _ := newCLI(t)

	for _, u := range []string{"dave", "erin"} {
		_, err := run("add", "--password", "password1", u)
		require.NoError(t, err)
	}

	out, err := run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "dave")
	assert.Contains(t, out, "erin")

	out, err = run("list", "--json")
	require.NoError(t, err)
	var views []credentials.View
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	assert.Len(t, views, 2)

	out, err = run("list", "--json", "--start-date", "2999-01-01-00-00")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	assert.Empty(t, views)

	_, err = run("list", "--end-date", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "%Y-%m-%d-%H-%M")
}

func TestUpdateRemove(t *testing.T) {
	t.Parallel()
	run, _ := newCLI(t)

	_, err := run("add", "--password", "password1", "frank")
	require.NoError(t, err)

	_, err = run("update", "frank")
	assert.Equal(t, 2, exitCode(t, err))

	out, err := run("update", "--description", "rotated", "--password", "password2", "frank")
	require.NoError(t, err)
	assert.Contains(t, out, "rotated")

	_, err = run("check", "frank", "password2")
	require.NoError(t, err)

	out, err = run("rm", "frank")
	require.NoError(t, err)
	assert.Equal(t, "removed frank\n", out)

	_, err = run("show", "frank")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
