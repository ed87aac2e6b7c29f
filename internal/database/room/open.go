// Package room opens the room store selected by configuration.
package room

import (
	"context"
	"fmt"

	"github.com/bloops-games/bingo/internal/database"
	roomDb "github.com/bloops-games/bingo/internal/database/room/database"
	"github.com/bloops-games/bingo/internal/database/room/postgres"
	"github.com/bloops-games/bingo/internal/database/room/sqlite"
)

func Open(ctx context.Context, config *database.Config) (database.Store, error) {
	switch config.Driver {
	case database.DriverBolt, "":
		db, err := database.NewFromEnv(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("new database from env: %w", err)
		}
		return roomDb.New(db), nil
	case database.DriverSQLite:
		store, err := sqlite.Open(ctx, config.FilePath, config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("sqlite open: %w", err)
		}
		return store, nil
	case database.DriverPostgres:
		ctx, cancel := context.WithTimeout(ctx, config.Timeout)
		defer cancel()

		store, err := postgres.Open(ctx, config.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres open: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", config.Driver)
	}
}
