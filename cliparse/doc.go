// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration
for the API server.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 4000)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - DatabaseURL: connection string (default for sqlite: file:data.sqlite)
  - LogLevel: debug, info, warn, error (default: info)

# CLI Flags

	-p          Server port
	-d          Database URL
	-t          Database type
	-log-level  Log level

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	LOG_LEVEL     → -log-level

CLI flags take precedence over environment variables. main loads a .env
file from the working directory before parsing; variables already set in the
environment win over the file.

# Validation

ParseFlags returns an error if:

  - PORT is not a number or out of range
  - the database type is not sqlite or postgres
  - postgres is selected without a DATABASE_URL
*/
package cliparse
