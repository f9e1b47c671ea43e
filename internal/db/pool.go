package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"horse.fit/pdfdesk/internal/config"
	"horse.fit/pdfdesk/internal/globaltime"
)

var errNotInitialized = errors.New("database pool is not initialized")

// Pool owns the gorm handle backing the upload ledger.
type Pool struct {
	gdb *gorm.DB
}

// NewPool opens DATABASE_URL, applies the pool limits and migrates the
// ledger schema. It fails fast when the database is unreachable.
func NewPool(ctx context.Context, cfg *config.Config) (*Pool, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !cfg.HasDatabase() {
		return nil, errors.New("DATABASE_URL is not set")
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:  logger.Default.LogMode(resolveGormLogLevel(cfg.LogLevel, cfg.Environment)),
		NowFunc: globaltime.UTC,
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap ledger database: %w", err)
	}

	maxOpen := max(int(cfg.DBMaxConns), 1)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(max(1, min(int(cfg.DBMinConns), maxOpen)))
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pool := &Pool{gdb: gdb}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping ledger database: %w", err)
	}
	if err := pool.autoMigrate(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("migrate ledger schema: %w", err)
	}
	return pool, nil
}

func (p *Pool) session(ctx context.Context) (*gorm.DB, error) {
	if p == nil || p.gdb == nil {
		return nil, errNotInitialized
	}
	return p.gdb.WithContext(ctx), nil
}

func (p *Pool) Close() error {
	if p == nil || p.gdb == nil {
		return nil
	}
	sqlDB, err := p.gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// resolveGormLogLevel keeps SQL logging quiet unless the app itself runs at
// debug or trace.
func resolveGormLogLevel(appLogLevel, environment string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(appLogLevel)) {
	case "trace", "debug":
		return logger.Info
	case "warn", "warning", "info", "":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	}
	if strings.EqualFold(strings.TrimSpace(environment), "local") {
		return logger.Warn
	}
	return logger.Error
}
