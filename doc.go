// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the pickpool API server.

pickpool runs prediction pools for tournament games: someone creates a pool
and shares its six-character join code, friends join with the code, and each
participant submits one score guess per game before kickoff.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=pickpool.db JWT_SECRET=... go run .

Or with flags:

	go run . -p 3333 -t postgres -d "postgres://..." -jwt-secret ...

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - JWT_SECRET (-jwt-secret): Secret for identity token signatures

Optional settings:

  - PORT (-p): Server port (default: 3333)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - CODE_ATTEMPTS: Join code generation attempts (default: 5)
  - JOIN_RPS, JOIN_BURST: Per-caller join rate limit
  - REDIS_URL: Enables join attempt statistics

# Architecture

  - pools: Pool lifecycle, participant registry and guess ledger
  - storage: Store interface and sentinel errors; storage/memory for tests
  - db: SQL schema and Store over SQLite or PostgreSQL
  - codegen: Join code generation
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, identity, join rate limiting, JSON helpers
  - models: Domain and request/response types
  - auth: Identity tokens
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
