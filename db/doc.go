// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open picks the driver from the database type and pings the server:

	conn, err := db.Open(db.TypeSQLite, "file:data.sqlite")

SQLite (modernc.org/sqlite, pure Go) is the embedded default. PostgreSQL
(lib/pq) is available for shared deployments:

	conn, err := db.Open(db.TypePostgres, "postgres://...")

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - features: id, title, votes (default 0, never negative), created_at

# Indexes

  - features.(votes DESC, created_at DESC) for the list ordering
*/
package db
