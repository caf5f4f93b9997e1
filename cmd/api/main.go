package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/neoledger/neo-export-backend/internal/adapters/neo"
	"github.com/neoledger/neo-export-backend/internal/api"
	appexport "github.com/neoledger/neo-export-backend/internal/application/export"
	"github.com/neoledger/neo-export-backend/internal/application/service"
	"github.com/neoledger/neo-export-backend/internal/domain/matcher"
	"github.com/neoledger/neo-export-backend/internal/infrastructure/config"
	"github.com/neoledger/neo-export-backend/internal/infrastructure/logging"
	"github.com/neoledger/neo-export-backend/internal/infrastructure/storage"
	"github.com/neoledger/neo-export-backend/internal/sink"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadOrEnv()
	logger := logging.NewLogger(cfg.Observability.Logging)

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	client := neo.NewClient(neo.Config{
		BaseURL:       cfg.Neo.BaseURL,
		PageSize:      cfg.Neo.PageSize,
		SessionCookie: cfg.Neo.SessionCookie,
	}, logger)

	orchestrator := appexport.New(
		client,
		matcher.New(cfg.Export.MatcherConfig(), logger),
		sink.NewFileSink(cfg.Export.OutputDir),
		store,
		cfg.Export.Exclusions(),
		logger,
	)
	exports := service.NewExportService(orchestrator, logger)

	apiCfg := api.DefaultConfig()
	if cfg.Server.Port > 0 {
		apiCfg.Port = cfg.Server.Port
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		apiCfg.AllowedOrigins = cfg.Server.AllowedOrigins
	}

	server := api.NewServer(apiCfg, store, exports, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting API server", slog.Int("port", apiCfg.Port))
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("Shutting down", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Forced shutdown", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("Server stopped")
}
