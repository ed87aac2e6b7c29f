package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/bloops-games/bingo/internal/bingobot"
	"github.com/bloops-games/bingo/internal/bingobot/game"
	"github.com/bloops-games/bingo/internal/bingobot/resource"
	"github.com/bloops-games/bingo/internal/chat/twitch"
	"github.com/bloops-games/bingo/internal/database/room"
	"github.com/bloops-games/bingo/internal/logging"
	"github.com/bloops-games/bingo/internal/server"
	"github.com/bloops-games/bingo/internal/shutdown"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/sync/errgroup"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, resource.Graffiti)
	_, _ = fmt.Fprintf(os.Stdout, resource.GreetingCLI, resource.ProjectName, resource.ProjectVersion, resource.GithubURL)

	ctx, done := shutdown.New()
	defer done()
	if err := realMain(ctx); err != nil {
		logging.FromContext(ctx).Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context) error {
	config := bingobot.Config{}
	if err := envconfig.Process("", &config); err != nil {
		return fmt.Errorf("processing the config: %w", err)
	}

	logger := logging.NewLogger(config.Debug)
	ctx = logging.WithLogger(ctx, logger)
	defer func() {
		_ = logger.Sync()
	}()

	if err := config.Twitch.LoadCredentials(); err != nil {
		return fmt.Errorf("twitch credentials: %w", err)
	}

	if err := config.Twitch.Validate(); err != nil {
		return fmt.Errorf("%w, see %s to get a chat token", err, resource.TwitchTokenURL)
	}

	store, err := room.Open(ctx, &config.Db)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	defer store.Close(ctx)

	engine, err := game.NewEngine(store, config.Game.Settings(),
		game.WithRetryAttempts(config.Db.RetryAttempts),
		game.WithRenderLimit(config.MessageLimit),
	)
	if err != nil {
		return fmt.Errorf("new engine: %w", err)
	}

	client := twitch.New(&config.Twitch)
	manager, err := bingobot.NewManager(client, engine, &config)
	if err != nil {
		return fmt.Errorf("new manager: %w", err)
	}

	srv, err := server.New(config.Port)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/health", server.HandleHealth(ctx))

	logger.Infof("listening on %s, joining %v", srv.Addr(), config.Twitch.Channels)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ServeHTTP(ctx, &http.Server{Handler: mux})
	})
	g.Go(func() error {
		return client.Run(ctx)
	})
	g.Go(func() error {
		return manager.Run(ctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	return nil
}
