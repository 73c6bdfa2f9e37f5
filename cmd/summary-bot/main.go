package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tubenotion/summary-bot/internal/app"
	"github.com/tubenotion/summary-bot/internal/config"
	"github.com/tubenotion/summary-bot/internal/storage"
)

func main() {
	mode := flag.String("mode", "bot", "Service mode (bot, worker)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres is required by the worker and optional for the bot, where it
	// only backs the /queue and /job commands.
	var database *storage.DB

	if *mode == "worker" && cfg.PostgresDSN == "" {
		logger.Fatal().Msg("worker mode requires POSTGRES_DSN")
	}

	if cfg.PostgresDSN != "" {
		database, err = storage.NewWithOptions(ctx, cfg.PostgresDSN, app.PoolOptionsFromConfig(cfg), &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	routing, err := config.LoadRouting(cfg.ChannelConfigPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load channel config")
	}

	application := app.New(cfg, routing, database, &logger)

	// Start health server in background
	go func() {
		if err := application.StartHealthServer(ctx); err != nil {
			logger.Error().Err(err).Msg("health check server error")
		}
	}()

	if err := runMode(ctx, application, *mode); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runMode(ctx context.Context, application *app.App, mode string) error {
	switch mode {
	case "bot":
		return application.RunBot(ctx)
	case "worker":
		return application.RunWorker(ctx)
	default:
		log.Fatalf("Usage: %s --mode=[bot|worker]", os.Args[0])

		return nil
	}
}
