// internal/store/postgres.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github-sparks/internal/database"
	"github-sparks/internal/model"
)

// PostgresBackend stores entries in the repo_cache table. Results are kept
// as JSONB.
type PostgresBackend struct {
	q database.Querier
}

// NewPostgresBackend creates a backend on top of the generated queries.
// Use database.New(pool) to obtain a Querier from a pgxpool.Pool.
func NewPostgresBackend(q database.Querier) *PostgresBackend {
	return &PostgresBackend{q: q}
}

func (b *PostgresBackend) Lookup(ctx context.Context, topic string) (Entry, error) {
	row, err := b.q.GetRepoCache(ctx, topic)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}

	var results []model.RankedRepository
	if err := json.Unmarshal(row.Results, &results); err != nil {
		return Entry{}, fmt.Errorf("decode results: %w", err)
	}
	return Entry{Query: row.Query, Results: results, UpdatedAt: row.UpdatedAt.Time}, nil
}

func (b *PostgresBackend) Upsert(ctx context.Context, e Entry) error {
	payload, err := json.Marshal(e.Results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return b.q.UpsertRepoCache(ctx, database.UpsertRepoCacheParams{
		Query:     e.Query,
		Results:   payload,
		UpdatedAt: pgtype.Timestamptz{Time: e.UpdatedAt, Valid: true},
	})
}

func (b *PostgresBackend) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return b.q.DeleteRepoCacheOlderThan(ctx, pgtype.Timestamptz{Time: cutoff, Valid: true})
}
