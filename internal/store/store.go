// internal/store/store.go
package store

import (
	"context"
	"errors"
	"time"

	"github-sparks/internal/model"
)

// ErrNotFound is returned by a Backend when no entry exists for a topic.
var ErrNotFound = errors.New("not found in cache")

// Entry is one row of the persistent cache.
type Entry struct {
	Query     string
	Results   []model.RankedRepository
	UpdatedAt time.Time
}

// Backend is a durable topic-keyed store with upsert semantics.
type Backend interface {
	// Lookup returns the entry stored for topic, or ErrNotFound.
	Lookup(ctx context.Context, topic string) (Entry, error)
	// Upsert writes or replaces the entry keyed by e.Query.
	Upsert(ctx context.Context, e Entry) error
	// DeleteOlderThan removes entries last written before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Disabled is the Backend used when no durable store is configured.
// Every lookup misses and every write is dropped.
type Disabled struct{}

func (Disabled) Lookup(context.Context, string) (Entry, error) { return Entry{}, ErrNotFound }

func (Disabled) Upsert(context.Context, Entry) error { return nil }

func (Disabled) DeleteOlderThan(context.Context, time.Time) (int64, error) { return 0, nil }
