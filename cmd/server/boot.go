package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/konveksi/internal/config"
	"github.com/Skotchmaster/konveksi/internal/repo"
	pkgdb "github.com/Skotchmaster/konveksi/pkg/db"
	"github.com/Skotchmaster/konveksi/pkg/logging"
)

// boot loads configuration, installs the logger and opens the store.
func boot(ctx context.Context) (config.Config, *slog.Logger, *gorm.DB, error) {
	cfg := config.Load()
	if err := cfg.RequireDB(); err != nil {
		return cfg, nil, nil, err
	}

	logger := logging.New(cfg.LogLevel).With("service", "konveksi")
	slog.SetDefault(logger)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := pkgdb.Open(openCtx, cfg.DB)
	if err != nil {
		return cfg, logger, nil, fmt.Errorf("db open: %w", err)
	}
	return cfg, logger, db, nil
}

func migrate(ctx context.Context, db *gorm.DB) error {
	return repo.Migrate(db.WithContext(ctx))
}
