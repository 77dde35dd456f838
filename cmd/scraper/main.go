package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/courtmetrics/marginflow/internal/config"
	"github.com/courtmetrics/marginflow/internal/logger"
	"github.com/courtmetrics/marginflow/internal/providers"
	"github.com/courtmetrics/marginflow/internal/services"
	"github.com/courtmetrics/marginflow/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.InitLogger("", cfg.IsDevelopment())

	// A season argument overrides the configured target; its absence is a
	// notice, not an error.
	if len(os.Args) > 1 {
		cfg.Season = os.Args[1]
		if err := config.ValidateSeasonLabel(cfg.Season); err != nil {
			log.Fatalf("Invalid season argument: %v", err)
		}
	} else {
		log.WithField("season", cfg.Season).Info("No season argument given, using default")
	}

	log.WithFields(logrus.Fields{
		"season":   cfg.Season,
		"database": cfg.DatabasePath,
	}).Info("Starting ingestion")

	store, err := storage.Open(cfg.DatabasePath, cfg.IsDevelopment(), log)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	source := providers.NewBasketballReferenceClient(providers.ClientOptions{
		BaseURL:          cfg.SourceBaseURL,
		Timeout:          cfg.SourceTimeout,
		MinDelay:         cfg.RateLimitMinDelay,
		MaxDelay:         cfg.RateLimitMaxDelay,
		Cooldown:         cfg.RateLimitCooldown,
		RetryMaxAttempts: cfg.RetryMaxAttempts,
		RetryBaseDelay:   cfg.RetryBaseDelay,
		BreakerThreshold: cfg.CircuitBreakerThreshold,
	}, log)

	ingestion := services.NewIngestionService(store, source, cfg.Season, cfg.SeasonType, log)
	report, err := ingestion.Run()
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}

	if len(report.FailedGames) > 0 {
		// Partial success still exits zero; the failed games are named in
		// the run report and a re-run picks them up.
		log.WithField("failed", len(report.FailedGames)).Warn("Run finished with failed games")
	}
}
