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
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Mrcarnj/MajorPools-sub000/internal/api"
	"github.com/Mrcarnj/MajorPools-sub000/internal/api/handlers"
	"github.com/Mrcarnj/MajorPools-sub000/internal/api/middleware"
	"github.com/Mrcarnj/MajorPools-sub000/internal/feed"
	"github.com/Mrcarnj/MajorPools-sub000/internal/services"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/config"
	"github.com/Mrcarnj/MajorPools-sub000/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// External leaderboard feed
	feedClient := feed.NewClient(cfg.RapidAPIKey, cfg.FeedTimeout, cfg.FeedRateLimit, cfg.CircuitBreakerThreshold, logger)

	// Notifications
	var notifier services.Notifier
	if cfg.ResendAPIKey != "" {
		notifier = services.NewResendNotifier(cfg.ResendAPIKey, cfg.EmailFrom, cfg.SiteURL, logger)
	} else {
		logrus.Warn("RESEND_API_KEY not set, emails will only be logged")
		notifier = services.NewMockNotifier()
	}

	// Initialize services
	cacheService := services.NewCacheService(redisClient)
	tournamentService := services.NewTournamentService(db.DB, feedClient, cacheService, logger)
	entryService := services.NewEntryService(db.DB, logger)
	leaderboardService := services.NewLeaderboardService(db.DB, cacheService, logger, cfg.EntryFee, cfg.DonationRate)
	syncService := services.NewSyncService(db.DB, feedClient, notifier, cacheService, logger, cfg.SyncWorkers)
	completionService := services.NewCompletionService(db.DB, notifier, cacheService, logger, cfg.EntryFee, cfg.DonationRate)

	// Sync scheduler
	syncInterval, err := time.ParseDuration(cfg.SyncInterval)
	if err != nil {
		logrus.Warnf("Invalid sync interval, using default 5m: %v", err)
		syncInterval = 5 * time.Minute
	}
	scheduler := services.NewSchedulerService(syncService, logger, syncInterval, syncInterval)
	if err := scheduler.Start(!cfg.SkipInitialSync); err != nil {
		logrus.Errorf("Failed to start sync scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(db)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	// Setup API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, &api.Services{
		Tournaments: tournamentService,
		Entries:     entryService,
		Leaderboard: leaderboardService,
		Sync:        syncService,
		Completion:  completionService,
	}, cfg)

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
