// Package storage persists the chart of accounts and bank transactions
// through GORM, on SQLite or PostgreSQL.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yurifrl/contabilu/pkg/config"
	"github.com/yurifrl/contabilu/pkg/models"
)

type Store struct {
	db     *gorm.DB
	logger *log.Logger
}

// Open connects to the database named by cfg.URL and migrates the schema.
//
//	postgres://... or postgresql://...  PostgreSQL
//	sqlite://path, file:..., or a path  SQLite
func Open(cfg config.DatabaseConfig, logger *log.Logger) (*Store, error) {
	dialector, err := dialectorFor(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// nature_code is a logical reference only; orphan codes are allowed.
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             time.Duration(cfg.SlowQuery) * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.AccountCode{}, &models.Transaction{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Debug("database ready", "dialect", dialector.Name())
	return &Store{db: db, logger: logger}, nil
}

func dialectorFor(url string) (gorm.Dialector, error) {
	switch {
	case url == "":
		return nil, fmt.Errorf("empty database url")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite://")), nil
	case strings.HasPrefix(url, "file:"):
		return sqlite.Open(url), nil
	case strings.Contains(url, "://"):
		return nil, fmt.Errorf("unsupported database url %q", url)
	}
	return sqlite.Open(url), nil
}

// NewSession opens a unit of work bound to ctx. The caller must Close it.
func (s *Store) NewSession(ctx context.Context) (UnitOfWork, error) {
	if err := s.Ping(ctx); err != nil {
		return nil, err
	}
	return &session{db: s.db.WithContext(ctx), logger: s.logger}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
