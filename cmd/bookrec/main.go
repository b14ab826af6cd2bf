// SPDX-FileCopyrightText: 2025 Pickatale AS
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pickatale/bookrec/internal/assistant"
	"github.com/pickatale/bookrec/internal/catalog"
	"github.com/pickatale/bookrec/internal/ledger"
	"github.com/pickatale/bookrec/internal/monitoring"
	"github.com/pickatale/bookrec/internal/postgres"
	"github.com/pickatale/bookrec/internal/services"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:      "bookrec",
		Usage:     "Book recommendation batch pipeline",
		Version:   "0.1.0",
		ArgsUsage: "[user-count]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "PostgreSQL warehouse connection URL",
				Sources:  cli.EnvVars("DATABASE_URL"),
				Required: true,
			},
			&cli.StringFlag{
				Name:     "openai-api-key",
				Usage:    "OpenAI API key",
				Sources:  cli.EnvVars("OPENAI_API_KEY"),
				Required: true,
			},
			&cli.StringFlag{
				Name:    "model",
				Value:   "gpt-4o",
				Usage:   "Model to run the assistant on",
				Sources: cli.EnvVars("OPENAI_MODEL"),
			},
			&cli.IntFlag{
				Name:    "lookback-days",
				Value:   14,
				Usage:   "Active-user lookback window in days",
				Sources: cli.EnvVars("BOOKREC_LOOKBACK_DAYS"),
			},
			&cli.IntFlag{
				Name:    "min-sessions",
				Value:   5,
				Usage:   "Minimum reading sessions for a user to count as active",
				Sources: cli.EnvVars("BOOKREC_MIN_SESSIONS"),
			},
			&cli.IntFlag{
				Name:    "history-limit",
				Value:   5,
				Usage:   "Maximum read books fed into each user's prompt",
				Sources: cli.EnvVars("BOOKREC_HISTORY_LIMIT"),
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				Value:   2 * time.Second,
				Usage:   "Delay between assistant run status polls",
				Sources: cli.EnvVars("BOOKREC_POLL_INTERVAL"),
			},
			&cli.DurationFlag{
				Name:    "poll-timeout",
				Value:   10 * time.Minute,
				Usage:   "Maximum wall-clock wait for a run to finish",
				Sources: cli.EnvVars("BOOKREC_POLL_TIMEOUT"),
			},
			&cli.StringFlag{
				Name:    "otlp-endpoint",
				Usage:   "OTLP gRPC endpoint for metrics (metrics disabled when empty)",
				Sources: cli.EnvVars("BOOKREC_OTLP_ENDPOINT"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("BOOKREC_DEBUG"),
			},
		},
		Action: runBatch,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("Failed to run command", "error", err)
		os.Exit(1)
	}
}

func runBatch(ctx context.Context, c *cli.Command) error {
	// Setup logger
	logLevel := slog.LevelInfo
	if c.Bool("debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	userCount := 1
	if arg := c.Args().First(); arg != "" {
		parsed, err := strconv.Atoi(arg)
		if err != nil || parsed < 1 {
			return fmt.Errorf("user-count must be a positive integer, got %q", arg)
		}
		userCount = parsed
	}

	// Connect to database
	dbPool, err := pgxpool.New(ctx, c.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")

	// Optional metrics
	var metrics *monitoring.PipelineMetrics
	if endpoint := c.String("otlp-endpoint"); endpoint != "" {
		manager, err := monitoring.NewManager(monitoring.Config{
			ServiceName:    "bookrec",
			ServiceVersion: c.Version,
			OTLPEndpoint:   endpoint,
		})
		if err != nil {
			return fmt.Errorf("failed to set up metrics: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := manager.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to shut down metrics", "error", err)
			}
		}()
		metrics = manager.GetPipelineMetrics()
	}

	// Create repositories
	readingRepo, err := postgres.NewReadingRepository(
		postgres.WithReadingRepositoryLogger(logger),
		postgres.WithReadingRepositoryDb(dbPool),
	)
	if err != nil {
		return fmt.Errorf("failed to create reading repository: %w", err)
	}

	catalogRepo, err := postgres.NewCatalogRepository(
		postgres.WithCatalogRepositoryLogger(logger),
		postgres.WithCatalogRepositoryDb(dbPool),
	)
	if err != nil {
		return fmt.Errorf("failed to create catalog repository: %w", err)
	}

	cachedCatalog := postgres.NewCachedCatalogRepository(catalogRepo, time.Hour)
	defer cachedCatalog.Close()

	// Assemble the pipeline
	model := c.String("model")
	usageLedger := ledger.New(model, ledger.WithLedgerLogger(logger))
	platform := assistant.NewOpenAIPlatform(c.String("openai-api-key"),
		assistant.WithOpenAIPlatformLogger(logger))
	lifecycle := assistant.NewLifecycle(platform, model,
		assistant.WithLifecycleLogger(logger))

	monitorOptions := []assistant.MonitorOption{
		assistant.WithMonitorLogger(logger),
		assistant.WithPollInterval(c.Duration("poll-interval")),
		assistant.WithPollTimeout(c.Duration("poll-timeout")),
	}
	if metrics != nil {
		monitorOptions = append(monitorOptions, assistant.WithMonitorMetrics(metrics))
	}
	monitor := assistant.NewMonitor(platform, usageLedger, monitorOptions...)

	exporter := catalog.NewExporter(cachedCatalog, catalog.WithExporterLogger(logger))

	recommenderOptions := []services.RecommenderOption{
		services.WithRecommenderLogger(logger),
		services.WithLookbackDays(c.Int("lookback-days")),
		services.WithMinSessions(c.Int("min-sessions")),
		services.WithHistoryLimit(c.Int("history-limit")),
	}
	if metrics != nil {
		recommenderOptions = append(recommenderOptions, services.WithRecommenderMetrics(metrics))
	}
	recommender := services.NewRecommender(
		readingRepo, cachedCatalog, exporter, lifecycle, monitor, platform, usageLedger,
		recommenderOptions...)

	return recommender.Run(ctx, userCount)
}
