// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the FeatureVotes API server.

FeatureVotes lets people suggest features, upvote them, and see them ranked
by votes or recency. This binary serves the JSON API; the terminal client
lives in cmd/featurevotes.

# Starting the Server

With no configuration the server stores data in ./data.sqlite and listens
on port 4000:

	go run .

Or with flags:

	go run . -p 8080 -t postgres -d "postgres://..."

# Configuration

  - PORT (-p): Server port (default: 4000)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): connection string (default: file:data.sqlite)
  - LOG_LEVEL (-log-level): debug, info, warn, error (default: info)

A .env file in the working directory is loaded first if present.

# Architecture

  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, panic recovery, JSON helpers
  - metrics: Prometheus collectors
  - models: Request/response types
  - store: Feature persistence
  - db: Connections and schema creation
  - cliparse: Configuration parsing

Client side:

  - client: typed HTTP client
  - featuresync: list synchronization and optimistic upvotes
  - settings: local preferences
  - tui: terminal interface
*/
package main
