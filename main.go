package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/camden-git/seeds/cache"
	"github.com/camden-git/seeds/config"
	"github.com/camden-git/seeds/database"
	"github.com/camden-git/seeds/handlers"
	"github.com/camden-git/seeds/observ"
	"github.com/camden-git/seeds/repository"
	"github.com/camden-git/seeds/services"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.DatabaseDriver == database.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
			logger.Fatal("failed to create database directory", zap.String("path", cfg.DatabasePath), zap.Error(err))
		}
	}

	db, err := database.InitGormDB(database.Options{
		Driver:   cfg.DatabaseDriver,
		DSN:      cfg.DatabaseDSN(),
		LogLevel: cfg.DatabaseLogLevel,
	})
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	if err := database.AutoMigrateModels(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	logger.Info("database ready", zap.String("driver", cfg.DatabaseDriver))

	var insightsCache cache.Cache = cache.Nop{}
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.Connect(ctx, cfg.RedisURL, cfg.InsightsCacheTTL)
		cancel()
		if err != nil {
			logger.Warn("insights cache disabled", zap.Error(err))
		} else {
			defer redisCache.Close()
			insightsCache = redisCache
			logger.Info("insights cache enabled", zap.Duration("ttl", cfg.InsightsCacheTTL))
		}
	}

	clock := services.SystemClock{Location: cfg.Location}
	svcs := services.New(db, insightsCache, clock, logger)

	router := handlers.NewRouter(handlers.RouterOptions{
		Services:       svcs,
		Users:          repository.NewGormUserRepository(db),
		JWTSecret:      []byte(cfg.JWTSecret),
		JWTExpiration:  time.Duration(cfg.JWTExpirationHours) * time.Hour,
		AllowSignup:    cfg.AllowSignup,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", serverAddr), zap.String("time_zone", cfg.Location.String()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("server stopped")
}
