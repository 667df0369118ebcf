package cmd

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"library-api/auth"
	"library-api/config"
	"library-api/logger"
	"library-api/store"
)

// app is everything a command needs, resolved once from the environment.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *gorm.DB
	store    *store.Store
	identity *auth.Provider
}

func newApp() (*app, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := config.OpenDB(cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s, err := store.New(db)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		store:    s,
		identity: auth.NewProvider(db, cfg.JWTSecret, cfg.SessionTTL),
	}, nil
}

func (a *app) days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
