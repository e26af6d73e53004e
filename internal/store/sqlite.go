// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github-sparks/internal/model"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// SQLiteBackend stores entries in a local SQLite file. Results are kept as
// JSON text and timestamps as unix milliseconds.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &SQLiteBackend{db: db, path: path}, nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// Path returns the database file path.
func (b *SQLiteBackend) Path() string {
	return b.path
}

func (b *SQLiteBackend) Lookup(ctx context.Context, topic string) (Entry, error) {
	var (
		payload   string
		updatedAt int64
	)
	err := b.db.QueryRowContext(ctx,
		`SELECT results, updated_at FROM repo_cache WHERE query = ?`, topic,
	).Scan(&payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}

	var results []model.RankedRepository
	if err := json.Unmarshal([]byte(payload), &results); err != nil {
		return Entry{}, fmt.Errorf("decode results: %w", err)
	}
	return Entry{Query: topic, Results: results, UpdatedAt: time.UnixMilli(updatedAt)}, nil
}

func (b *SQLiteBackend) Upsert(ctx context.Context, e Entry) error {
	payload, err := json.Marshal(e.Results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	_, err = b.db.ExecContext(ctx, `
		INSERT INTO repo_cache (query, results, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (query) DO UPDATE
		SET results = excluded.results,
		    updated_at = excluded.updated_at`,
		e.Query, string(payload), e.UpdatedAt.UnixMilli(),
	)
	return err
}

func (b *SQLiteBackend) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := b.db.ExecContext(ctx, `DELETE FROM repo_cache WHERE updated_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
