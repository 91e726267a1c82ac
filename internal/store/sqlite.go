package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hearth-home/hearth/internal/infrastructure/database"
)

// snapshotSchema holds one row per collection. The whole collection is
// serialised as a single JSON document; the transactional upsert gives
// us an atomic replace.
const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
    collection TEXT PRIMARY KEY,
    document   TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
);`

// SQLiteStore implements Store on top of the shared SQLite connection.
type SQLiteStore struct {
	db *database.DB
}

// NewSQLite creates a snapshot store over the given database.
func NewSQLite(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Init creates the snapshots table if it does not exist.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("creating snapshots table: %w", err)
	}
	return nil
}

// ReadSnapshot returns the persisted document for the collection.
func (s *SQLiteStore) ReadSnapshot(ctx context.Context, collection string) ([]byte, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT document FROM snapshots WHERE collection = ?", collection,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s snapshot: %w", collection, err)
	}
	return []byte(doc), nil
}

// WriteSnapshot replaces the persisted document for the collection.
func (s *SQLiteStore) WriteSnapshot(ctx context.Context, collection string, doc []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (collection, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(collection) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at`,
		collection, string(doc), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing %s snapshot: %w", collection, err)
	}
	return nil
}
