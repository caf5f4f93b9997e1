package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/neoledger/neo-export-backend/internal/adapters/neo"
	appexport "github.com/neoledger/neo-export-backend/internal/application/export"
	"github.com/neoledger/neo-export-backend/internal/domain/matcher"
	"github.com/neoledger/neo-export-backend/internal/infrastructure/config"
	"github.com/neoledger/neo-export-backend/internal/infrastructure/logging"
	"github.com/neoledger/neo-export-backend/internal/infrastructure/storage"
	"github.com/neoledger/neo-export-backend/internal/sink"
)

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file path")
		accountID  = flag.String("account", "", "Credit account ID to export")
		year       = flag.Int("year", 0, "Calendar year to export (0 = config default)")
		outputDir  = flag.String("out", "", "Output directory for CSV files")
		dryRun     = flag.Bool("dry-run", false, "Run the pipeline without writing files")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg := loadConfig(*configFile)

	logCfg := cfg.Observability.Logging
	if *verbose {
		logCfg.Level = slog.LevelDebug.String()
	}
	logger := logging.NewLogger(logCfg)

	if *year != 0 {
		cfg.Export.Year = *year
	}
	if *outputDir != "" {
		cfg.Export.OutputDir = *outputDir
	}
	if *accountID == "" {
		logger.Error("-account is required")
		os.Exit(1)
	}
	if cfg.Neo.SessionCookie == "" {
		logger.Error("NEO_SESSION_COOKIE environment variable not set")
		os.Exit(1)
	}

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

	logger.Info("Starting export",
		slog.String("account_id", *accountID),
		slog.Int("year", cfg.Export.Year),
		slog.String("output_dir", cfg.Export.OutputDir),
		slog.Bool("dry_run", *dryRun),
	)

	result, err := orchestrator.Run(context.Background(), appexport.Options{
		AccountID: *accountID,
		Year:      cfg.Export.Year,
		DryRun:    *dryRun,
	})
	if err != nil {
		logger.Error("Export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Export completed",
		slog.String("job_id", result.JobID),
		slog.Int("fetched", result.FetchedCount),
		slog.Int("filtered", result.FilteredCount),
		slog.Int("full_matches", result.FullMatches),
		slog.Int("partial_matches", result.PartialMatches),
		slog.Int("anomalies", result.Anomalies),
		slog.Int("final", result.FinalCount),
		slog.Int("removed", result.RemovedCount),
	)
	for _, path := range result.SavedPaths {
		logger.Info("Wrote artifact", slog.String("path", path))
	}
}

func loadConfig(configFile string) *config.Config {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			slog.Error("Failed to load config file",
				slog.String("file", configFile),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		return cfg
	}
	return config.LoadOrEnv()
}
