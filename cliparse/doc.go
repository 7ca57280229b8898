// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3333)
  - DatabaseURL: SQLite path or PostgreSQL connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - JWTSecret: Secret for identity token signatures (required)
  - MaxCodeAttempts: Join code generation attempts per pool (default: 5)
  - JoinRPS, JoinBurst: Per-client join rate limit (default: 1/s, burst 5)
  - RedisURL: Join statistics store (optional)

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type
	-redis          Redis URL
	-jwt-secret     Identity token secret
	-code-attempts  Join code attempts
	-join-rps       Join rate
	-join-burst     Join burst

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	REDIS_URL     → -redis
	JWT_SECRET    → -jwt-secret
	CODE_ATTEMPTS → -code-attempts
	JOIN_RPS      → -join-rps
	JOIN_BURST    → -join-burst

CLI flags take precedence over environment variables. main loads a .env
file before parsing, so any of these can live there during development.

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - DATABASE_URL must be provided
  - JWT_SECRET must be provided
  - DATABASE_TYPE must be sqlite or postgres
  - numeric values must parse and be positive
*/
package cliparse
