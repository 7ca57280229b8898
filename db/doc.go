// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database, creates the schema and implements
storage.Store over database/sql.

# Engines

Open accepts TypeSQLite (modernc.org/sqlite, pure Go) or TypePostgres
(github.com/lib/pq):

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	store := db.NewStore(conn, cfg.DatabaseType)

SQLite runs on a single connection with foreign keys, WAL and a busy timeout
enabled. Queries are written with ? placeholders and rebound to $N for
PostgreSQL.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - app_user: Profiles copied from identity tokens
  - pool: Title, unique join code, optional owner
  - participant: One row per (pool, user)
  - game: Kickoff times, written by the schedule loader
  - guess: One row per (participant, game), scores >= 0

# Relationships

	pool 1──* participant
	participant 1──* guess
	game 1──* guess

Foreign keys use ON DELETE CASCADE. Timestamps are unix milliseconds.

# Conflicts

Unique violations (pq code 23505, SQLite UNIQUE/PRIMARY KEY constraint) are
returned as storage.ErrConflict so callers can treat them as expected
outcomes. Missing rows are storage.ErrNotFound.
*/
package db
