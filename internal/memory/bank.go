// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package memory provides the local key-value memory bank backed by
// SQLite. The bank is available even when no orchestrator is connected.
package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound indicates the requested key does not exist.
	ErrNotFound = errors.New("memory entry not found")

	// ErrEmptyKey indicates a blank key was supplied.
	ErrEmptyKey = errors.New("memory key cannot be empty")
)

// =============================================================================
// ENTRY
// =============================================================================

// Entry is one stored memory record.
type Entry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// =============================================================================
// BANK
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_updated ON entries(updated_at);
`

// Bank is a SQLite-backed key-value store. Safe for concurrent use; the
// connection pool is limited to a single connection because SQLite
// supports one writer at a time.
type Bank struct {
	db *sql.DB
}

// Open opens (creating if needed) the memory bank at path.
func Open(path string) (*Bank, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create memory directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Bank{db: db}, nil
}

// Close closes the bank and releases resources.
func (b *Bank) Close() error {
	return b.db.Close()
}

// Store inserts or replaces the value under key.
func (b *Bank) Store(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	now := time.Now().UTC()
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO entries (key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now, now)
	if err != nil {
		return fmt.Errorf("failed to store entry: %w", err)
	}
	return nil
}

// Get returns the entry under key, or ErrNotFound.
func (b *Bank) Get(ctx context.Context, key string) (Entry, error) {
	var e Entry
	err := b.db.QueryRowContext(ctx,
		"SELECT key, value, created_at, updated_at FROM entries WHERE key = ?", key).
		Scan(&e.Key, &e.Value, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read entry: %w", err)
	}
	return e, nil
}

// List returns all entries ordered by key.
func (b *Bank) List(ctx context.Context) ([]Entry, error) {
	rows, err := b.db.QueryContext(ctx,
		"SELECT key, value, created_at, updated_at FROM entries ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Delete removes the entry under key. Deleting an absent key returns
// ErrNotFound.
func (b *Bank) Delete(ctx context.Context, key string) error {
	res, err := b.db.ExecContext(ctx, "DELETE FROM entries WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return nil
}

// Search returns entries whose key or value contains term, ordered by key.
func (b *Bank) Search(ctx context.Context, term string) ([]Entry, error) {
	pattern := "%" + term + "%"
	rows, err := b.db.QueryContext(ctx, `
		SELECT key, value, created_at, updated_at FROM entries
		WHERE key LIKE ? OR value LIKE ?
		ORDER BY key`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Count returns the number of stored entries.
func (b *Bank) Count(ctx context.Context) (int, error) {
	var n int
	if err := b.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// Export writes all entries to w as indented JSON.
func (b *Bank) Export(ctx context.Context, w io.Writer) error {
	entries, err := b.List(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// Import reads a JSON entry array from r and stores each record,
// overwriting existing keys. Original timestamps are preserved when
// present.
func (b *Bank) Import(ctx context.Context, r io.Reader) (int, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return 0, fmt.Errorf("failed to decode import: %w", err)
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	imported := 0
	for _, e := range entries {
		if e.Key == "" {
			continue
		}
		created := e.CreatedAt
		if created.IsZero() {
			created = now
		}
		updated := e.UpdatedAt
		if updated.IsZero() {
			updated = now
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO entries (key, value, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			e.Key, e.Value, created, updated); err != nil {
			return 0, fmt.Errorf("failed to import entry %q: %w", e.Key, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return imported, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
