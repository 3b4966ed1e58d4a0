// Package bootstrap builds the app for serverless hosts, which import it
// instead of internal packages.
package bootstrap

import (
	"context"
	"time"

	"wealthdesk-backend/internal/config"
	"wealthdesk-backend/internal/infrastructure/database"
	"wealthdesk-backend/internal/interfaces/router"
	"wealthdesk-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// New loads config, builds the app and seeds the reference rows. Schema
// migration is left to the long-running server.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, JSONOutput: true})
	app, db, _, err := router.CreateApp(cfg)
	if err != nil {
		return nil, err
	}
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.Seed(ctx, db); err != nil {
			return nil, err
		}
	}
	return app, nil
}
