package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nightstay/backend-go/internal/api"
	"github.com/nightstay/backend-go/internal/calendar"
	"github.com/nightstay/backend-go/internal/config"
	"github.com/nightstay/backend-go/internal/database"
	"github.com/nightstay/backend-go/internal/database/repository"
	"github.com/nightstay/backend-go/internal/database/service"
	"github.com/nightstay/backend-go/internal/handler"
	"github.com/nightstay/backend-go/internal/logger"
	"github.com/nightstay/backend-go/internal/middleware"
	"github.com/nightstay/backend-go/internal/worker"
)

func main() {
	// 1. Config
	cfg := config.LoadConfig()

	// 2. Logger
	appLogger := logger.New(cfg)

	appLogger.Info("🚀 [Go] Starting NightStay API...",
		"environment", cfg.AppEnv,
		"database_driver", cfg.DatabaseDriver,
	)

	loc, err := cfg.Location()
	if err != nil {
		appLogger.Error("❌ Invalid timezone", "error", err)
		os.Exit(1)
	}

	// 3. Connect to Database
	if err := database.ConnectDatabase(cfg, appLogger); err != nil {
		appLogger.Error("❌ Failed to connect to database", "error", err)
		os.Exit(1)
	}

	db := database.GetDatabase()
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Error("❌ Failed to get database handle", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// 4. Initialize Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	entryRepo := repository.NewSleepEntryRepository(db)

	// 5. Initialize Redis Client for calendar state
	var calendarStore calendar.Store
	redisClient, err := database.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Warn("⚠️ Failed to connect to Redis for calendar state", "error", err)
		appLogger.Info("💡 Remembered calendar months will be kept in memory")
		calendarStore = calendar.NewMemoryStore()
	} else {
		calendarStore = redisClient
		defer redisClient.Close()
	}

	// 6. Initialize Rate Limiter
	rateLimiter, err := middleware.NewRateLimiter(cfg, appLogger)
	if err != nil {
		appLogger.Warn("⚠️ Failed to connect to Redis, using no-op rate limiter", "error", err)
		rateLimiter = middleware.NewNoOpRateLimiter(appLogger)
	}
	defer rateLimiter.Close()

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, rateLimiter, cfg, appLogger)
	locationService := service.NewLocationService(locationRepo, appLogger)
	entryService := service.NewSleepEntryService(entryRepo, appLogger)
	statsService := service.NewStatsService(locationRepo, entryRepo, loc, appLogger)

	// 8. Initialize Handlers & Middleware
	if err := handler.RegisterValidators(); err != nil {
		appLogger.Error("❌ Failed to register validators", "error", err)
		os.Exit(1)
	}

	handlers := api.Handlers{
		Health:     handler.NewHealthHandler(sqlDB.PingContext, appLogger),
		Auth:       handler.NewAuthHandler(authService, appLogger),
		Location:   handler.NewLocationHandler(locationService, appLogger),
		SleepEntry: handler.NewSleepEntryHandler(entryService, appLogger),
		Stats:      handler.NewStatsHandler(statsService, appLogger),
		Calendar:   handler.NewCalendarHandler(entryService, calendarStore, loc, appLogger),
	}
	authMiddleware := middleware.NewAuthMiddleware(authService, appLogger)

	// 9. Background jobs
	pool := worker.NewPool(appLogger)
	pool.Every("refresh-token-cleanup", time.Duration(cfg.TokenCleanupInterval)*time.Second, func(ctx context.Context) error {
		removed, err := authService.PurgeExpiredTokens(ctx)
		if err != nil {
			return err
		}
		appLogger.Info("🧹 [Worker] Expired refresh tokens removed", "count", removed)
		return nil
	})

	// 10. Router
	r := api.SetupRouter(handlers, authMiddleware, time.Duration(cfg.RequestTimeout)*time.Second)

	// 11. Start HTTP Server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ApiServicePort),
		Handler: r,
	}

	go func() {
		appLogger.Info("🌍 [Go] HTTP Server running on port...", "port", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("❌ HTTP Server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	appLogger.Info("🛑 [Go] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("❌ HTTP Server shutdown failed", "error", err)
	}

	pool.Shutdown(5 * time.Second)
	appLogger.Info("👋 [Go] Bye")
}
