//go:build integration

// cmd/service/integration_test.go
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/time/rate"

	"github-sparks/internal/app"
	"github-sparks/internal/cache"
	"github-sparks/internal/clock"
	"github-sparks/internal/database"
	"github-sparks/internal/github"
	"github-sparks/internal/sparks"
	"github-sparks/internal/store"
)

func setupTestDatabase(ctx context.Context, t *testing.T) (*pgxpool.Pool, func()) {
	// Start a postgres container
	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	// Get the connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Run migrations
	require.NoError(t, app.RunMigrations("file://../../migrations", connStr))

	// Create a connection pool
	dbpool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	// Teardown function to be called by the test
	teardown := func() {
		dbpool.Close()
		err := pgContainer.Terminate(ctx)
		require.NoError(t, err)
	}

	return dbpool, teardown
}

func TestSearchRepos_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dbpool, teardown := setupTestDatabase(ctx, t)
	defer teardown()

	clk := clock.NewFake(time.Now().UTC().Truncate(time.Second))
	created := clk.Now().AddDate(0, 0, -3).Format(time.RFC3339)
	updated := clk.Now().Format(time.RFC3339)

	// Setup a mock GitHub API server
	var searches int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/repositories" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		atomic.AddInt32(&searches, 1)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"total_count": 2, "items": [
			{"id": 1, "name": "zap", "full_name": "zig/zap", "owner": {"login": "zig"},
			 "stargazers_count": 300, "forks_count": 50, "created_at": "` + created + `", "updated_at": "` + updated + `"},
			{"id": 2, "name": "toy", "full_name": "zig/toy", "owner": {"login": "zig"},
			 "stargazers_count": 10, "forks_count": 0, "created_at": "` + created + `", "updated_at": "` + updated + `"}
		]}`))
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	base, err := url.Parse(server.URL)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ghClient := github.NewClient("", logger, github.WithBaseURL(base), github.WithRateLimit(rate.Inf))

	// Wire the orchestrator with the REAL database and the mock GitHub API
	persistent := store.NewCache(store.NewPostgresBackend(database.New(dbpool)), clk, logger)
	svc := sparks.NewService(cache.New(clk), persistent, ghClient, logger, sparks.WithClock(clk))

	// --- ACT ---
	repos, err := svc.SearchRepos(ctx, "Zig Web Frameworks", false)
	require.NoError(t, err)
	svc.Wait()

	// --- ASSERT ---
	require.Len(t, repos, 1)
	assert.Equal(t, "zap", repos[0].Name)
	assert.Equal(t, 216.7, repos[0].SparkScore)
	assert.Equal(t, 12000, repos[0].GrowthPercentage)

	// Query the database directly to verify the entry was written.
	row, err := database.New(dbpool).GetRepoCache(ctx, "Zig Web Frameworks")
	require.NoError(t, err)
	assert.True(t, clk.Now().Equal(row.UpdatedAt.Time))

	// A fresh process within the fresh window is served from postgres.
	clk.Advance(time.Hour)
	restarted := sparks.NewService(cache.New(clk), persistent, ghClient, logger, sparks.WithClock(clk))
	again, err := restarted.SearchRepos(ctx, "Zig Web Frameworks", false)
	require.NoError(t, err)
	assert.Equal(t, repos, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&searches))

	// Past the fresh window a stale read is served and refreshed in the background.
	clk.Advance(8 * time.Hour)
	stale := sparks.NewService(cache.New(clk), persistent, ghClient, logger, sparks.WithClock(clk))
	again, err = stale.SearchRepos(ctx, "Zig Web Frameworks", true)
	require.NoError(t, err)
	assert.Equal(t, repos, again)
	stale.Wait()
	assert.Equal(t, int32(2), atomic.LoadInt32(&searches))

	// Entries older than the stale window are swept.
	clk.Advance(48 * time.Hour)
	n, err := persistent.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
