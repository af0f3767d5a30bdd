// Package app wires config into the store, cache, services and HTTP
// engines shared by cmd/api and cmd/admin.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"go-gin-gorm-microblog/internal/core/auth"
	"go-gin-gorm-microblog/internal/core/cache"
	"go-gin-gorm-microblog/internal/core/config"
	"go-gin-gorm-microblog/internal/core/database"
	"go-gin-gorm-microblog/internal/core/logger"
	"go-gin-gorm-microblog/internal/repo"
	"go-gin-gorm-microblog/internal/service"
	"go-gin-gorm-microblog/internal/transport/http/router"
	"go-gin-gorm-microblog/pkg/utils"
)

type App struct {
	Config   *config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Cache    *cache.Cache
	Services *service.Services
	JWT      *auth.JWTer
}

// NewLogger builds the process logger from cfg.Log.
func NewLogger(cfg *config.Config) (*zap.Logger, func()) {
	return logger.New(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: !cfg.Log.JSON,
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.Rotate.Enable,
			Filename:   cfg.Log.Rotate.Filename,
			MaxSizeMB:  cfg.Log.Rotate.MaxSizeMB,
			MaxBackups: cfg.Log.Rotate.MaxBackups,
			MaxAgeDays: cfg.Log.Rotate.MaxAgeDays,
			Compress:   cfg.Log.Rotate.Compress,
		},
	})
}

// New opens the database (migrating when configured), connects Redis when
// an address is set, and builds the services.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	gormLog, err := logger.ToStdLogger(log.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		return nil, err
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		SlowThresholdMS:    cfg.DB.SlowThresholdMS,
		Writer:             gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return nil, err
		}
		log.Info("automigrate done")
	}

	var c *cache.Cache
	if cfg.Redis.Enabled() {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := c.Ping(ctx); err != nil {
			// the profile cache is optional; run uncached
			log.Warn("redis unavailable, profile cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
			c = nil
		}
	}

	svc := service.New(repo.NewStore(db), service.Options{
		Hasher:     utils.NewBcryptHasher(cfg.Security.BcryptCost),
		Cache:      c,
		ProfileTTL: time.Duration(cfg.Redis.ProfileTTLSec) * time.Second,
		Logger:     log.Named("service"),
	})

	return &App{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Cache:    c,
		Services: svc,
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		},
	}, nil
}

// Deps is the router wiring; http selects the listener's limits.
func (a *App) Deps(http config.HTTP) router.Deps {
	checks := map[string]func(context.Context) error{
		"db": func(ctx context.Context) error { return database.Ping(ctx, a.DB) },
	}
	if a.Cache != nil {
		checks["redis"] = a.Cache.Ping
	}
	return router.Deps{
		Log:      a.Log,
		Services: a.Services,
		JWT:      a.JWT,
		HTTP:     http,
		Security: a.Config.Security,
		Cors:     a.Config.Cors,
		Checks:   checks,
	}
}

func (a *App) Close() error {
	var errs []error
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}
