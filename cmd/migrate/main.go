// Command migrate creates the users table and exits. Safe to run repeatedly.
package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"flickhub/internal/core/config"
	"flickhub/internal/core/database"
	"flickhub/internal/core/logger"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		boot, _ := zap.NewProduction()
		boot.Fatal("config", zap.Error(err))
	}

	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()

	db, err := database.NewGorm(database.OptsFromConfig(cfg.DB), log)
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("migrate failed", zap.Error(err))
	}
	log.Info("migrate done", zap.String("driver", cfg.DB.Driver), zap.String("name", cfg.DB.Name))
}
