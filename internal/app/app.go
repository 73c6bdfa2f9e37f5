// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - Bot mode: watches Telegram chats for YouTube links and summarizes them
//     interactively
//   - Worker mode: drains the Postgres-backed job queue in batches
//
// Each mode can be run independently based on deployment needs.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tubenotion/summary-bot/internal/bot"
	"github.com/tubenotion/summary-bot/internal/config"
	"github.com/tubenotion/summary-bot/internal/notion"
	"github.com/tubenotion/summary-bot/internal/platform/observability"
	"github.com/tubenotion/summary-bot/internal/storage"
	"github.com/tubenotion/summary-bot/internal/summarize"
	"github.com/tubenotion/summary-bot/internal/transcript"
	"github.com/tubenotion/summary-bot/internal/worker"
	"github.com/tubenotion/summary-bot/internal/workflow"
	"github.com/tubenotion/summary-bot/internal/youtube"
)

const errBotInit = "bot initialization failed: %w"

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg      *config.Config
	routing  *config.Routing
	database *storage.DB
	logger   *zerolog.Logger
}

// New creates a new App instance. The database is nil in bot mode; only the
// queue worker needs one.
func New(cfg *config.Config, routing *config.Routing, database *storage.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		routing:  routing,
		database: database,
		logger:   logger,
	}
}

// PoolOptionsFromConfig maps the environment pool settings onto storage options.
func PoolOptionsFromConfig(cfg *config.Config) storage.PoolOptions {
	return storage.PoolOptions{
		MaxConns:          cfg.DBMaxConnections,
		MinConns:          cfg.DBMinConnections,
		MaxConnIdleTime:   cfg.DBMaxConnIdleTime,
		MaxConnLifetime:   cfg.DBMaxConnLifetime,
		HealthCheckPeriod: cfg.DBHealthCheckPeriod,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	var pingers []observability.Pinger
	if a.database != nil {
		pingers = append(pingers, a.database)
	}

	srv := observability.NewServer(a.cfg.HealthPort, a.logger, pingers...)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// RunBot runs the interactive bot mode.
func (a *App) RunBot(ctx context.Context) error {
	a.logger.Info().Msg("Starting bot mode")

	controller, err := a.buildController(ctx)
	if err != nil {
		return err
	}

	// A nil *storage.DB must stay a nil interface so the queue commands
	// report themselves as unconfigured.
	var queue bot.JobQueue
	if a.database != nil {
		queue = a.database
	}

	b, err := bot.New(a.cfg, a.routing, controller, queue, a.logger)
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	if err := b.Run(ctx); err != nil {
		return fmt.Errorf("bot run: %w", err)
	}

	return nil
}

// RunWorker runs the queue worker mode.
func (a *App) RunWorker(ctx context.Context) error {
	a.logger.Info().Msg("Starting worker mode")

	if a.database == nil {
		return fmt.Errorf("worker mode requires POSTGRES_DSN")
	}

	controller, err := a.buildController(ctx)
	if err != nil {
		return err
	}

	sender, err := bot.NewSender(a.cfg.BotToken, a.logger)
	if err != nil {
		return fmt.Errorf(errBotInit, err)
	}

	p := worker.New(
		a.database,
		controller,
		sender,
		bot.FormatOutcome,
		a.cfg.WorkerBatchSize,
		a.cfg.WorkerPollInterval,
		a.logger,
	)

	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("worker run: %w", err)
	}

	return nil
}

// buildController assembles the summarization pipeline shared by both modes.
func (a *App) buildController(ctx context.Context) (*workflow.Controller, error) {
	fetcher, err := youtube.NewFetcher(ctx, a.cfg.YouTubeAPIKey, a.logger)
	if err != nil {
		return nil, fmt.Errorf("youtube client init: %w", err)
	}

	resolver := transcript.NewResolver(a.logger,
		transcript.NewCaptionsBackend(a.cfg.TranscriptLanguage, a.cfg.TranscriptNearDupes, a.logger),
		transcript.NewAPIBackend(a.cfg.TranscriptLanguage, a.logger),
	)

	writer := notion.NewWriter(notion.New(notion.Config{
		Token:      a.cfg.NotionToken,
		DatabaseID: a.cfg.NotionDatabaseID,
	}), a.logger)

	return workflow.NewController(fetcher, resolver, a.newSummarizer(), writer, a.logger), nil
}

// newSummarizer builds the provider gate: Gemini primary with per-model
// instances created on demand, OpenAI fallback when configured.
func (a *App) newSummarizer() *summarize.Gate {
	factory := func(ctx context.Context, model string) (summarize.Provider, error) {
		p, err := summarize.NewGeminiProvider(ctx, a.cfg.GeminiAPIKey, model, a.cfg.GeminiRPS, a.logger)
		if err != nil {
			return nil, err
		}

		return p, nil
	}

	fallback := summarize.NewOpenAIProvider(a.cfg.OpenAIAPIKey, a.cfg.OpenAIModel, a.cfg.OpenAIRPS, a.logger)

	return summarize.NewGate(factory, fallback, a.cfg.GeminiModel, a.logger)
}
