package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bloops-games/bingo/internal/bingobot"
	"github.com/bloops-games/bingo/internal/bingobot/game"
	"github.com/bloops-games/bingo/internal/bingobot/resource"
	"github.com/bloops-games/bingo/internal/chat/console"
	"github.com/bloops-games/bingo/internal/database"
	"github.com/bloops-games/bingo/internal/database/room"
	"github.com/bloops-games/bingo/internal/database/room/model"
	"github.com/bloops-games/bingo/internal/logging"
	"github.com/bloops-games/bingo/internal/phrases"
	"github.com/bloops-games/bingo/internal/shutdown"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, resource.Graffiti)
	_, _ = fmt.Fprintf(os.Stdout, resource.GreetingCLI, resource.ProjectName, resource.ProjectVersion, resource.GithubURL)

	ctx, done := shutdown.New()
	defer done()
	if err := realMain(ctx, os.Args[1:]); err != nil {
		logging.FromContext(ctx).Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("bingo-cli", pflag.ContinueOnError)
	var (
		dbPath      = flags.String("db", "bingo-cli.db", "bolt database file")
		roomID      = flags.String("room", "#local", "room to play in")
		identity    = flags.StringP("name", "n", "host", "your chat name, a moderator of the room")
		rows        = flags.IntP("rows", "r", 3, "card rows")
		columns     = flags.IntP("columns", "c", 3, "card columns")
		approval    = flags.Bool("approval", false, "moderators confirm every bingo")
		consume     = flags.Bool("consume", false, "a phrase goes to one card only")
		phrasesPath = flags.StringP("phrases", "p", "", "phrase file (yaml or text) to add to the room")
		debug       = flags.Bool("debug", false, "debug logging")
	)

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	logger := logging.NewLogger(*debug)
	ctx = logging.WithLogger(ctx, logger)

	store, err := room.Open(ctx, &database.Config{
		Driver:   database.DriverBolt,
		FilePath: *dbPath,
		Timeout:  time.Second,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	defer store.Close(ctx)

	engine, err := game.NewEngine(store, model.Settings{
		Rows:             *rows,
		Columns:          *columns,
		ApprovalRequired: *approval,
		ConsumePhrases:   *consume,
	})
	if err != nil {
		return fmt.Errorf("new engine: %w", err)
	}

	if *phrasesPath != "" {
		list, err := phrases.Load(*phrasesPath)
		if err != nil {
			return fmt.Errorf("load phrases: %w", err)
		}

		added, err := engine.AddPhrases(ctx, *roomID, list)
		if err != nil {
			return fmt.Errorf("add phrases: %w", err)
		}

		_, _ = fmt.Fprintf(os.Stdout, "%d new phrases in %s\n", added, *roomID)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Type %s to start, \"@name text\" to talk as another viewer, Ctrl+D to quit\n",
		resource.CmdStart)

	transport := console.New(os.Stdin, os.Stdout, console.Config{
		Room:       *roomID,
		Identity:   *identity,
		Moderators: []string{*identity},
	})

	manager, err := bingobot.NewManager(transport, engine, &bingobot.Config{
		WorkerNum:    1,
		CacheSize:    64,
		MessageLimit: game.DefaultRenderLimit,
	})
	if err != nil {
		return fmt.Errorf("new manager: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return transport.Run(ctx)
	})
	g.Go(func() error {
		return manager.Run(ctx)
	})

	return g.Wait()
}
