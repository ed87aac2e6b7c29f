// Package roomtest opens every room store driver for tests.
package roomtest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bloops-games/bingo/internal/database"
	"github.com/bloops-games/bingo/internal/database/room"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresEnv enables the Postgres driver; it needs a reachable Docker daemon.
const PostgresEnv = "BINGO_POSTGRES_TESTS"

// OpenStores opens a fresh bolt and SQLite store, plus Postgres when PostgresEnv
// is set to 1. Stores are closed when the test finishes.
func OpenStores(t *testing.T) map[string]database.Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	stores := map[string]database.Store{}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close(ctx)
		}
	})

	stores[database.DriverBolt] = open(t, &database.Config{
		Driver:   database.DriverBolt,
		FilePath: filepath.Join(dir, "bolt.db"),
		Timeout:  time.Second,
	})

	stores[database.DriverSQLite] = open(t, &database.Config{
		Driver:   database.DriverSQLite,
		FilePath: filepath.Join(dir, "sqlite.db"),
		Timeout:  time.Second,
	})

	if os.Getenv(PostgresEnv) == "1" {
		stores[database.DriverPostgres] = open(t, &database.Config{
			Driver:  database.DriverPostgres,
			DSN:     PostgresDSN(t),
			Timeout: 10 * time.Second,
		})
	}

	return stores
}

// PostgresDSN starts a throwaway Postgres container and returns its connection string.
func PostgresDSN(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("bingo"),
		postgres.WithUsername("bingo"),
		postgres.WithPassword("bingo"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	return dsn
}

func open(t *testing.T, config *database.Config) database.Store {
	t.Helper()

	store, err := room.Open(context.Background(), config)
	require.NoError(t, err, "open %s store", config.Driver)

	return store
}
