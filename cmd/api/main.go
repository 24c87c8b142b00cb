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

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"flickhub/internal/catalog"
	"flickhub/internal/core/config"
	"flickhub/internal/core/database"
	"flickhub/internal/core/logger"
	"flickhub/internal/core/server"
	"flickhub/internal/repo"
	"flickhub/internal/service"
	"flickhub/internal/transport/http/handler"
	"flickhub/internal/transport/http/router"
	"flickhub/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err == nil {
		err = cfg.RequireCatalog()
	}
	if err != nil {
		boot, _ := zap.NewProduction()
		boot.Fatal("config", zap.Error(err))
	}

	log, cleanup := logger.FromConfig(cfg.Log)
	defer cleanup()
	undo := logger.RedirectStdLog(log.Named("stdlog"), zapcore.InfoLevel)
	defer undo()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log.Named("gin"), zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log.Named("gin"), zapcore.ErrorLevel)

	db := mustOpenDB(cfg, log)
	defer func() { _ = database.Close(db) }()
	log.Info("database connected",
		zap.String("driver", cfg.DB.Driver),
		zap.String("host", cfg.DB.Host),
		zap.String("name", cfg.DB.Name),
	)

	if cfg.DB.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	users := repo.NewUserRepo(db)
	accounts := service.NewAccountService(users, log.Named("account"),
		service.WithHashCost(max(cfg.Auth.BcryptCost, utils.MinPasswordCost)))

	cat, err := catalog.NewClient(catalog.Config{
		BaseURL:  cfg.Catalog.BaseURL,
		APIKey:   cfg.Catalog.APIKey,
		Language: cfg.Catalog.Language,
		Timeout:  time.Duration(cfg.Catalog.TimeoutSec) * time.Second,
	}, log.Named("catalog"))
	if err != nil {
		log.Fatal("catalog client", zap.Error(err))
	}

	hc := cfg.App.HTTP
	r := router.NewAPIEngine(log, router.Options{
		CORSOrigins:    hc.CORSOrigins,
		MaxInFlight:    hc.MaxInFlight,
		MaxBodyBytes:   hc.MaxBodyBytes,
		RequestTimeout: time.Duration(hc.RequestTimeoutSec) * time.Second,
	},
		handler.NewSystemHandler(database.Pinger(db), log),
		handler.NewCatalogHandler(cat, log),
		handler.NewAccountHandler(accounts, log, cfg.Auth.RedirectURL),
	)

	addr := server.Addr(hc.Host, hc.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(hc.ReadTimeoutSec)*time.Second,
		time.Duration(hc.WriteTimeoutSec)*time.Second,
		time.Duration(hc.IdleTimeoutSec)*time.Second,
		logger.ToStdLogger(log.Named("http"), zapcore.WarnLevel),
	)

	host4human := hc.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(hc.Port)
	log.Info("flickhub api starting",
		zap.String("env", cfg.App.Env),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/api/health"),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	log.Info("flickhub api stopped")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.OptsFromConfig(cfg.DB), l)
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
