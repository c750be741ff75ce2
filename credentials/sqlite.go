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
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLiteStore keeps credentials in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens the database at dsn, enables WAL journaling and applies
// the schema.
//
// Example:
//
//	store, err := credentials.OpenSQLite(ctx, "/var/lib/basic-auth/credentials.db")
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if isMemoryDSN(dsn) {
		// each connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS credentials (
			username TEXT PRIMARY KEY,
			password_hash BLOB NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_credentials_created_at ON credentials(created_at);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrating credentials schema: %w", err)
		}
	}
	return nil
}

const selectColumns = `SELECT username, password_hash, description, created_at, updated_at FROM credentials`

type scanner interface {
	Scan(dest ...any) error
}

func scanCredential(row scanner) (Credential, error) {
	var c Credential
	var created, updated int64
	if err := row.Scan(&c.Username, &c.PasswordHash, &c.Description, &created, &updated); err != nil {
		return Credential{}, err
	}
	c.CreatedAt = time.Unix(created, 0).UTC()
	c.UpdatedAt = time.Unix(updated, 0).UTC()
	return c, nil
}

// List implements [Store].
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Credential, error) {
	query := selectColumns
	var conds []string
	var args []any
	if filter.Start != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, filter.Start.Unix())
	}
	if limit, ok := filter.Limit(); ok {
		conds = append(conds, "created_at < ?")
		args = append(args, limit.Unix())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY username"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}
	defer rows.Close()

	list := []Credential{}
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning credential: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing credentials: %w", err)
	}

	return list, nil
}

// Get implements [Store].
func (s *SQLiteStore) Get(ctx context.Context, username string) (Credential, error) {
	c, err := scanCredential(s.db.QueryRowContext(ctx, selectColumns+` WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, notFound(username)
	}
	if err != nil {
		return Credential{}, fmt.Errorf("getting credential %q: %w", username, err)
	}
	return c, nil
}

// Create implements [Store].
func (s *SQLiteStore) Create(ctx context.Context, cred Credential) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials (username, password_hash, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(username) DO NOTHING`,
		cred.Username, cred.PasswordHash, cred.Description, cred.CreatedAt.Unix(), cred.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("creating credential %q: %w", cred.Username, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("creating credential %q: %w", cred.Username, err)
	}
	if n == 0 {
		return alreadyExists(cred.Username)
	}
	return nil
}

// Update implements [Store].
func (s *SQLiteStore) Update(ctx context.Context, username string, changes Changes) (Credential, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Credential{}, fmt.Errorf("updating credential %q: %w", username, err)
	}
	defer func() { _ = tx.Rollback() }()

	c, err := scanCredential(tx.QueryRowContext(ctx, selectColumns+` WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, notFound(username)
	}
	if err != nil {
		return Credential{}, fmt.Errorf("updating credential %q: %w", username, err)
	}

	if changes.PasswordHash != nil {
		c.PasswordHash = changes.PasswordHash
	}
	if changes.Description != nil {
		c.Description = *changes.Description
	}
	c.UpdatedAt = time.Unix(changes.UpdatedAt.Unix(), 0).UTC()

	if _, err := tx.ExecContext(ctx,
		`UPDATE credentials SET password_hash = ?, description = ?, updated_at = ? WHERE username = ?`,
		c.PasswordHash, c.Description, c.UpdatedAt.Unix(), username,
	); err != nil {
		return Credential{}, fmt.Errorf("updating credential %q: %w", username, err)
	}

	if err := tx.Commit(); err != nil {
		return Credential{}, fmt.Errorf("updating credential %q: %w", username, err)
	}
	return c, nil
}

// Delete implements [Store].
func (s *SQLiteStore) Delete(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", username, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", username, err)
	}
	if n == 0 {
		return notFound(username)
	}
	return nil
}

// Ping implements [Store].
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements [Store].
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
