package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/teekalk/internal/db"
)

type sqlQueries struct {
	get    string
	put    string
	delete string
}

var (
	sqliteQueries = sqlQueries{
		get: `SELECT blob_value FROM blobs WHERE blob_key = ?`,
		put: `
			INSERT INTO blobs (blob_key, blob_value, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(blob_key) DO UPDATE SET
				blob_value = excluded.blob_value,
				updated_at = CURRENT_TIMESTAMP
		`,
		delete: `DELETE FROM blobs WHERE blob_key = ?`,
	}
	postgresQueries = sqlQueries{
		get: `SELECT blob_value FROM blobs WHERE blob_key = $1`,
		put: `
			INSERT INTO blobs (blob_key, blob_value, updated_at)
			VALUES ($1, $2, CURRENT_TIMESTAMP)
			ON CONFLICT (blob_key) DO UPDATE SET
				blob_value = excluded.blob_value,
				updated_at = CURRENT_TIMESTAMP
		`,
		delete: `DELETE FROM blobs WHERE blob_key = $1`,
	}
)

// SQLStore keeps blobs in the migrated "blobs" table of a SQLite or Postgres database.
type SQLStore struct {
	db      *sql.DB
	queries sqlQueries
}

// NewSQLStore wraps a migrated database opened with db.Open for driver.
func NewSQLStore(database *sql.DB, driver string) (*SQLStore, error) {
	switch driver {
	case db.DriverSQLite:
		return &SQLStore{db: database, queries: sqliteQueries}, nil
	case db.DriverPostgres:
		return &SQLStore{db: database, queries: postgresQueries}, nil
	default:
		return nil, fmt.Errorf("unsupported sql store driver %q", driver)
	}
}

// Get returns the value stored under key.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.queries.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query blob %q: %w", key, err)
	}
	return []byte(value), nil
}

// Put inserts or replaces the value stored under key.
func (s *SQLStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.queries.put, key, string(value)); err != nil {
		return fmt.Errorf("upsert blob %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.queries.delete, key); err != nil {
		return fmt.Errorf("delete blob %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
