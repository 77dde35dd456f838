package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/courtmetrics/marginflow/internal/api/handlers"
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
	log.WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
		"database":    cfg.DatabasePath,
	}).Info("Starting query server")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// The query path never writes; it opens the store read-only and
	// tolerates eventually-consistent views during an active ingestion run.
	store, err := storage.OpenReadOnly(cfg.DatabasePath, cfg.IsDevelopment(), log)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	var cache services.CacheProvider = services.NoopCache{}
	if cfg.RedisURL != "" {
		redisCache, err := services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		cache = redisCache
		log.Info("Redis cache enabled")
	} else {
		log.Info("REDIS_URL unset, caching disabled")
	}

	// Background re-ingestion gets its own writer handle; the single-writer
	// rule holds as long as no scraper process runs concurrently.
	var scheduler *services.Scheduler
	if cfg.EnableBackgroundJobs && cfg.ScrapeSchedule != "" {
		writerStore, err := storage.Open(cfg.DatabasePath, cfg.IsDevelopment(), log)
		if err != nil {
			log.Fatalf("Failed to open database for background jobs: %v", err)
		}
		defer writerStore.Close()

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
		ingestion := services.NewIngestionService(writerStore, source, cfg.Season, cfg.SeasonType, log)

		scheduler = services.NewScheduler(ingestion, log)
		if err := scheduler.Start(cfg.ScrapeSchedule); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	gamesHandler := handlers.NewGamesHandler(
		store,
		cache,
		cfg.DefaultLagSeconds,
		cfg.DefaultMaxDiff,
		time.Duration(cfg.SeriesCacheTTLSecs)*time.Second,
		log,
	)
	healthHandler := handlers.NewHealthHandler(store, log)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/seasons", gamesHandler.GetSeasons)
		apiV1.GET("/teams", gamesHandler.GetTeams)
		apiV1.GET("/games", gamesHandler.ListGames)
		apiV1.GET("/games/:id", gamesHandler.GetGame)
		apiV1.GET("/games/:id/series", gamesHandler.GetSeries)
		apiV1.GET("/games/:id/matrix", gamesHandler.GetMatrix)
	}

	router.GET("/health", healthHandler.GetHealth)
	router.HEAD("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)
	router.HEAD("/ready", healthHandler.GetReady)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Query server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down query server...")
	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Query server forced to shutdown: %v", err)
	}

	log.Info("Query server exited")
}
