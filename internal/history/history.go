// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists submitted prompts locally for composer recall.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DefaultMaxEntries bounds the history when no limit is configured.
const DefaultMaxEntries = 500

const schema = `
CREATE TABLE IF NOT EXISTS prompts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	text       TEXT NOT NULL,
	session_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_prompts_created ON prompts(created_at DESC);
`

// Prompt is one recorded submission.
type Prompt struct {
	ID        int64
	Text      string
	SessionID string
	CreatedAt time.Time
}

// Store is the local prompt history, backed by SQLite.
type Store struct {
	db         *sql.DB
	maxEntries int
}

// Open opens (creating if needed) the history database at path.
func Open(path string, maxEntries int) (*Store, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db, maxEntries: maxEntries}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add records a submitted prompt. Blank prompts are ignored. The store is
// trimmed to its entry limit on every insert.
func (s *Store) Add(ctx context.Context, text, sessionID string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO prompts (text, session_id, created_at) VALUES (?, ?, ?)",
		text, sessionID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record prompt: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM prompts WHERE id NOT IN (
			SELECT id FROM prompts ORDER BY id DESC LIMIT ?
		)`, s.maxEntries)
	if err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	return nil
}

// Recent returns the latest prompts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Prompt, error) {
	if limit <= 0 || limit > s.maxEntries {
		limit = s.maxEntries
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, session_id, created_at
		FROM prompts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var prompts []Prompt
	for rows.Next() {
		var p Prompt
		if err := rows.Scan(&p.ID, &p.Text, &p.SessionID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// Search returns prompts containing the query, newest first.
func (s *Store) Search(ctx context.Context, queryText string, limit int) ([]Prompt, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, session_id, created_at
		FROM prompts
		WHERE text LIKE ?
		ORDER BY id DESC LIMIT ?`,
		"%"+queryText+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}
	defer rows.Close()

	var prompts []Prompt
	for rows.Next() {
		var p Prompt
		if err := rows.Scan(&p.ID, &p.Text, &p.SessionID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// Count returns the number of stored prompts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM prompts").Scan(&n)
	return n, err
}
