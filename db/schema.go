// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported values for Config.DatabaseType
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open connects to the database and verifies the connection.
// SQLite runs on a single connection so writers queue instead of failing busy.
func Open(dbType, url string) (*sql.DB, error) {
	var dsn string
	switch dbType {
	case TypePostgres:
		dsn = url
	case TypeSQLite:
		path := strings.TrimPrefix(url, "file:")
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		dsn = filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(dbType, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbType == TypeSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are stored as unix milliseconds so both engines agree on them.
const schema = `
-- User profiles, copied from identity token claims
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    avatar_url TEXT
);

-- Pools
CREATE TABLE IF NOT EXISTS pool (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    code TEXT NOT NULL UNIQUE,
    owner_id TEXT,
    created_at BIGINT NOT NULL
);

-- Participants
CREATE TABLE IF NOT EXISTS participant (
    id TEXT PRIMARY KEY,
    pool_id TEXT NOT NULL REFERENCES pool(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    joined_at BIGINT NOT NULL,
    UNIQUE (pool_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_participant_user_id ON participant(user_id);

-- Games (written by the schedule service)
CREATE TABLE IF NOT EXISTS game (
    id TEXT PRIMARY KEY,
    starts_at BIGINT NOT NULL,
    first_team_country_code TEXT NOT NULL,
    second_team_country_code TEXT NOT NULL
);

-- Guesses
CREATE TABLE IF NOT EXISTS guess (
    id TEXT PRIMARY KEY,
    participant_id TEXT NOT NULL REFERENCES participant(id) ON DELETE CASCADE,
    game_id TEXT NOT NULL REFERENCES game(id) ON DELETE CASCADE,
    first_team_points INTEGER NOT NULL CHECK (first_team_points >= 0),
    second_team_points INTEGER NOT NULL CHECK (second_team_points >= 0),
    created_at BIGINT NOT NULL,
    UNIQUE (participant_id, game_id)
);

CREATE INDEX IF NOT EXISTS idx_guess_game_id ON guess(game_id);
`
