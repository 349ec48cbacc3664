// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/featurevotes/models"
)

// ErrNotFound is returned when no feature matches the requested id.
var ErrNotFound = errors.New("feature not found")

const featureColumns = "id, title, votes, created_at"

// Store persists features through database/sql.
// Queries use $N placeholders, which both lib/pq and modernc.org/sqlite accept.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// List returns every feature, most voted first, newest first among ties.
func (s *Store) List(ctx context.Context) ([]models.Feature, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+featureColumns+`
		FROM features
		ORDER BY votes DESC, created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	features := []models.Feature{}
	for rows.Next() {
		var f models.Feature
		if err := rows.Scan(&f.ID, &f.Title, &f.Votes, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		f.CreatedAt = f.CreatedAt.UTC()
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}

	return features, nil
}

// Create inserts a feature with zero votes and returns the stored row.
func (s *Store) Create(ctx context.Context, title string) (models.Feature, error) {
	f := models.Feature{Title: title, Votes: 0, CreatedAt: s.now().UTC()}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO features (title, votes, created_at)
		VALUES ($1, 0, $2)
		RETURNING id
	`, title, f.CreatedAt).Scan(&f.ID)
	if err != nil {
		return models.Feature{}, fmt.Errorf("insert feature: %w", err)
	}
	return f, nil
}

// Upvote adds exactly one vote. The increment is a single statement so
// concurrent upvotes never lose votes; the read-back shares its transaction.
// Unknown ids return ErrNotFound and change nothing.
func (s *Store) Upvote(ctx context.Context, id int64) (models.Feature, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Feature{}, fmt.Errorf("begin upvote: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE features
		SET votes = votes + 1
		WHERE id = $1
	`, id)
	if err != nil {
		return models.Feature{}, fmt.Errorf("upvote feature %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Feature{}, fmt.Errorf("upvote feature %d: %w", id, err)
	}
	if n == 0 {
		return models.Feature{}, ErrNotFound
	}

	f, err := scanFeature(tx.QueryRowContext(ctx, selectByID, id))
	if err != nil {
		return models.Feature{}, fmt.Errorf("reload feature %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return models.Feature{}, fmt.Errorf("commit upvote: %w", err)
	}
	return f, nil
}

const selectByID = `
	SELECT ` + featureColumns + `
	FROM features
	WHERE id = $1
`

func scanFeature(row *sql.Row) (models.Feature, error) {
	var f models.Feature
	if err := row.Scan(&f.ID, &f.Title, &f.Votes, &f.CreatedAt); err != nil {
		return models.Feature{}, err
	}
	f.CreatedAt = f.CreatedAt.UTC()
	return f, nil
}
