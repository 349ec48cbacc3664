// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/featurevotes/db"
	"github.com/danielhkuo/featurevotes/models"
)

// TestDBURL is an in-memory SQLite database private to each connection
const TestDBURL = ":memory:"

// SetupTestDB creates a fresh in-memory database with the full schema.
// The connection is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// CreateTestFeature inserts a feature directly and returns it
func CreateTestFeature(t *testing.T, conn *sql.DB, title string, votes int, createdAt time.Time) models.Feature {
	t.Helper()

	f := models.Feature{Title: title, Votes: votes, CreatedAt: createdAt.UTC()}
	err := conn.QueryRow(`
		INSERT INTO features (title, votes, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, title, votes, f.CreatedAt).Scan(&f.ID)
	if err != nil {
		t.Fatalf("Failed to create test feature: %v", err)
	}

	return f
}

// GetVotes reads the stored vote count for a feature
func GetVotes(t *testing.T, conn *sql.DB, id int64) int {
	t.Helper()

	var votes int
	if err := conn.QueryRow("SELECT votes FROM features WHERE id = $1", id).Scan(&votes); err != nil {
		t.Fatalf("Failed to read votes for %d: %v", id, err)
	}
	return votes
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
