package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the service's gorm handle with pool lifecycle helpers
type DB struct {
	*gorm.DB
}

// PoolSettings sizes the postgres connection pool
type PoolSettings struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// PoolForConcurrency returns pool settings for a league fan-out of the given width. Each
// worker may hold a read and the upsert transaction at once, so the pool is at least twice
// the concurrency.
func PoolForConcurrency(concurrency int) PoolSettings {
	if concurrency < 1 {
		concurrency = 1
	}
	maxOpen := concurrency * 2
	if maxOpen < 20 {
		maxOpen = 20
	}
	return PoolSettings{
		MaxIdleConns:    5,
		MaxOpenConns:    maxOpen,
		ConnMaxLifetime: time.Hour,
	}
}

// NewOptimizationServiceConnection opens postgres with a pool sized for concurrency and
// verifies the connection before returning.
func NewOptimizationServiceConnection(databaseURL string, isDevelopment bool, concurrency int) (*DB, error) {
	logLevel := logger.Error
	if isDevelopment {
		logLevel = logger.Info
	}

	gdb, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	pool := PoolForConcurrency(concurrency)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"max_open_conns":    pool.MaxOpenConns,
		"optimize_workers":  concurrency,
		"conn_max_lifetime": pool.ConnMaxLifetime,
	}).Info("Lineup database ready")

	return &DB{gdb}, nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck pings the pool; it backs /health and /ready
func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
