package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/airwave-tv/airwave/internal/config"
	"github.com/airwave-tv/airwave/internal/db"
	"github.com/airwave-tv/airwave/internal/logger"
	"github.com/airwave-tv/airwave/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", false)
		logger.Log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to create database directory")
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	sqlDB, err := database.GetSQLDB()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to get database handle for migrations")
	}
	if err := db.RunMigrations(sqlDB, cfg.Database.MigrationsPath); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	srv := server.New(cfg, database)

	// Warm builds so the first tune-in doesn't pay probe latency
	go srv.Cache().RebuildAll(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-quit:
		logger.Log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
