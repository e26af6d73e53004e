// internal/store/postgres_test.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github-sparks/internal/database"
)

// MockQuerier is a mock of the database.Querier interface.
type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) DeleteRepoCacheOlderThan(ctx context.Context, updatedAt pgtype.Timestamptz) (int64, error) {
	args := m.Called(ctx, updatedAt)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockQuerier) GetRepoCache(ctx context.Context, query string) (database.RepoCache, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(database.RepoCache), args.Error(1)
}
func (m *MockQuerier) UpsertRepoCache(ctx context.Context, arg database.UpsertRepoCacheParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

func TestPostgresBackend_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("maps no rows to ErrNotFound", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("GetRepoCache", ctx, "Web3").Return(database.RepoCache{}, pgx.ErrNoRows).Once()

		_, err := NewPostgresBackend(mockQ).Lookup(ctx, "Web3")

		assert.ErrorIs(t, err, ErrNotFound)
		mockQ.AssertExpectations(t)
	})

	t.Run("decodes stored results", func(t *testing.T) {
		payload, err := json.Marshal(testRepos)
		require.NoError(t, err)
		mockQ := new(MockQuerier)
		mockQ.On("GetRepoCache", ctx, "Web3").Return(database.RepoCache{
			Query:     "Web3",
			Results:   payload,
			UpdatedAt: pgtype.Timestamptz{Time: testNow, Valid: true},
		}, nil).Once()

		e, err := NewPostgresBackend(mockQ).Lookup(ctx, "Web3")

		require.NoError(t, err)
		assert.Equal(t, "Web3", e.Query)
		assert.Equal(t, testRepos, e.Results)
		assert.True(t, testNow.Equal(e.UpdatedAt))
	})

	t.Run("reports malformed results", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("GetRepoCache", ctx, "Web3").Return(database.RepoCache{
			Query:   "Web3",
			Results: []byte(`{"not":"a list"}`),
		}, nil).Once()

		_, err := NewPostgresBackend(mockQ).Lookup(ctx, "Web3")

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("passes through database errors", func(t *testing.T) {
		dbErr := errors.New("unexpected database error")
		mockQ := new(MockQuerier)
		mockQ.On("GetRepoCache", ctx, "Web3").Return(database.RepoCache{}, dbErr).Once()

		_, err := NewPostgresBackend(mockQ).Lookup(ctx, "Web3")

		assert.Equal(t, dbErr, err)
	})
}

func TestPostgresBackend_Upsert(t *testing.T) {
	ctx := context.Background()
	mockQ := new(MockQuerier)
	mockQ.On("UpsertRepoCache", ctx, mock.MatchedBy(func(arg database.UpsertRepoCacheParams) bool {
		var decoded []json.RawMessage
		return arg.Query == "Web3" &&
			arg.UpdatedAt.Valid && arg.UpdatedAt.Time.Equal(testNow) &&
			json.Unmarshal(arg.Results, &decoded) == nil && len(decoded) == 1
	})).Return(nil).Once()

	err := NewPostgresBackend(mockQ).Upsert(ctx, Entry{Query: "Web3", Results: testRepos, UpdatedAt: testNow})

	require.NoError(t, err)
	mockQ.AssertExpectations(t)
}

func TestPostgresBackend_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	cutoff := testNow.Add(-24 * time.Hour)
	mockQ := new(MockQuerier)
	mockQ.On("DeleteRepoCacheOlderThan", ctx, pgtype.Timestamptz{Time: cutoff, Valid: true}).Return(int64(2), nil).Once()

	n, err := NewPostgresBackend(mockQ).DeleteOlderThan(ctx, cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	mockQ.AssertExpectations(t)
}
