// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// Supported database types
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dbType string) error {
	ddl, err := schemaFor(dbType)
	if err != nil {
		return err
	}

	_, err = db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func schemaFor(dbType string) (string, error) {
	switch dbType {
	case TypeSQLite:
		return sqliteSchema, nil
	case TypePostgres:
		return postgresSchema, nil
	}
	return "", fmt.Errorf("unsupported database type %q", dbType)
}

const sqliteSchema = `
-- Features
CREATE TABLE IF NOT EXISTS features (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    votes INTEGER NOT NULL DEFAULT 0 CHECK (votes >= 0),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_features_votes ON features(votes DESC, created_at DESC);
`

const postgresSchema = `
-- Features
CREATE TABLE IF NOT EXISTS features (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    votes INTEGER NOT NULL DEFAULT 0 CHECK (votes >= 0),
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_features_votes ON features(votes DESC, created_at DESC);
`
