package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mewong1/Divedeep/internal/analysis"
	"github.com/mewong1/Divedeep/internal/api/insight"
	"github.com/mewong1/Divedeep/internal/config"
	"github.com/mewong1/Divedeep/internal/domain"
	"github.com/mewong1/Divedeep/internal/engine"
	"github.com/mewong1/Divedeep/internal/question"
	"github.com/mewong1/Divedeep/internal/server"
	"github.com/mewong1/Divedeep/internal/storage"
	memorystore "github.com/mewong1/Divedeep/internal/storage/memory"
	sqlitestore "github.com/mewong1/Divedeep/internal/storage/sqlite"
	"github.com/mewong1/Divedeep/internal/telemetry"
	"github.com/mewong1/Divedeep/internal/timing"
	"github.com/mewong1/Divedeep/internal/transcript"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (optional)")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	shutdown, err := telemetry.InitTracer("divedeep", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	insightClient := insight.NewClient(cfg.Insight.BaseURL,
		insight.WithAPIKey(cfg.Insight.APIKey),
		insight.WithTimeout(cfg.Insight.Timeout),
	)
	if err := insightClient.Validate(); err != nil {
		log.Fatalf("Insight client misconfigured: %v", err)
	}

	var store storage.SessionStore
	switch cfg.Storage.Type {
	case "sqlite":
		s, err := sqlitestore.New(cfg.Storage.SQLite.Path)
		if err != nil {
			log.Fatalf("Failed to open sqlite store: %v", err)
		}
		defer s.Close()
		store = s
	default:
		store = memorystore.New()
	}

	feed := transcript.NewFeed()

	eng := engine.New(
		engine.Config{
			Vibe:          domain.Vibe(cfg.Session.Vibe),
			Enabled:       cfg.Session.Enabled,
			CheckInterval: cfg.Session.CheckInterval,
			SettleDelay:   cfg.Session.SettleDelay,
		},
		analysis.NewClient(insightClient, logger),
		question.NewClient(insightClient, logger),
		timing.NewOracle(insightClient, logger),
		feed,
		engine.WithStore(store),
		engine.WithLogger(logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)

	srv := server.New(cfg.Server.Port, logger)
	server.NewSessionHandler(eng, feed).Register(srv.Router)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server failed", slog.String("error", err.Error()))
			cancel()
		}
	}()

	logger.Info("divedeep started",
		slog.String("session_id", eng.SessionID()),
		slog.String("vibe", cfg.Session.Vibe),
		slog.Bool("enabled", cfg.Session.Enabled),
		slog.Duration("check_interval", cfg.Session.CheckInterval),
		slog.String("storage", cfg.Storage.Type),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, stopping session")
	eng.Stop()
	logger.Info("divedeep shutdown complete")
}
