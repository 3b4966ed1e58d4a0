package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wealthdesk-backend/internal/config"
	"wealthdesk-backend/internal/infrastructure/database"
	"wealthdesk-backend/internal/interfaces/router"
	"wealthdesk-backend/internal/pkg/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, JSONOutput: cfg.LogJSON})

	app, db, rdb, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("database migration failed")
		}
		if err := database.Seed(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("database seed failed")
		}
		cancel()
		log.Info().Msg("Postgres connected")
	}
	if rdb != nil {
		log.Info().Msg("Redis connected")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Msgf("Health check: http://localhost:%s/health/json", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if rdb != nil {
		rdb.Close()
	}
}
