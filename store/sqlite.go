package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	PRIMARY KEY (collection, key)
);
CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection);
`

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) a SQLite database at path and
// returns a Store over a single records table keyed by collection and key.
func NewSQLiteStore(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Save(ctx context.Context, collection, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (collection, key, value, updated_at)
		 VALUES (?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		 ON CONFLICT(collection, key) DO UPDATE SET
		   value = excluded.value,
		   updated_at = excluded.updated_at`,
		collection, key, value,
	)
	if err != nil {
		return fmt.Errorf("%w: %s/%s: %v", ErrSaveFailed, collection, key, err)
	}
	return nil
}

func (s *sqliteStore) Load(ctx context.Context, collection, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM records WHERE collection = ? AND key = ?",
		collection, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrKeyNotFound, collection, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrLoadFailed, collection, key, err)
	}
	return value, nil
}

func (s *sqliteStore) Delete(ctx context.Context, collection, key string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM records WHERE collection = ? AND key = ?",
		collection, key,
	); err != nil {
		return fmt.Errorf("delete failed: %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *sqliteStore) ListKeys(ctx context.Context, collection string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key FROM records WHERE collection = ? ORDER BY key",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, collection, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, collection, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, collection, err)
	}
	return keys, nil
}

// Close closes the underlying database handle.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}
