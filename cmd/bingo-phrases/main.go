package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bloops-games/bingo/internal/bingobot/game"
	"github.com/bloops-games/bingo/internal/database"
	"github.com/bloops-games/bingo/internal/database/room"
	"github.com/bloops-games/bingo/internal/database/room/model"
	"github.com/bloops-games/bingo/internal/logging"
	"github.com/bloops-games/bingo/internal/phrases"
	"github.com/bloops-games/bingo/internal/shutdown"
	"github.com/spf13/pflag"
)

func main() {
	ctx, done := shutdown.New()
	defer done()
	if err := realMain(ctx, os.Args[1:]); err != nil {
		logging.FromContext(ctx).Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("bingo-phrases", pflag.ContinueOnError)
	flags.Usage = func() {
		_, _ = fmt.Fprintln(os.Stderr, "Usage: bingo-phrases --room '#channel' [--driver bolt|sqlite|postgres] FILE...")
		flags.PrintDefaults()
	}

	var (
		roomID  = flags.String("room", "", "room (chat channel) whose pool receives the phrases")
		driver  = flags.String("driver", database.DriverBolt, "store driver: bolt, sqlite or postgres")
		dbPath  = flags.String("db", "bingo.db", "database file of the bolt and sqlite drivers")
		dsn     = flags.String("dsn", os.Getenv("BINGO_DB_DSN"), "postgres connection string")
		timeout = flags.Duration("timeout", 5*time.Second, "store connection timeout")
	)

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if *roomID == "" || flags.NArg() == 0 {
		flags.Usage()
		return fmt.Errorf("room and at least one phrase file are required")
	}

	var list []string
	for _, path := range flags.Args() {
		p, err := phrases.Load(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		list = append(list, p...)
	}

	store, err := room.Open(ctx, &database.Config{
		Driver:   *driver,
		FilePath: *dbPath,
		DSN:      *dsn,
		Timeout:  *timeout,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	defer store.Close(ctx)

	// the card size is irrelevant for pool edits
	engine, err := game.NewEngine(store, model.Settings{Rows: 1, Columns: 1})
	if err != nil {
		return fmt.Errorf("new engine: %w", err)
	}

	added, err := engine.AddPhrases(ctx, *roomID, list)
	if err != nil {
		return fmt.Errorf("add phrases: %w", err)
	}

	status, err := engine.Status(ctx, *roomID)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "%s: %d new phrases, %d in the pool, %d unused\n",
		*roomID, added, status.Phrases, status.UnusedPhrases)

	return nil
}
