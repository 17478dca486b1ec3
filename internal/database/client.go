// Package database opens GORM connections to the PostgreSQL/TimescaleDB
// telemetry store.
package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/powerspeed/internal/log"
	"go.uber.org/zap"
)

// gormLogger routes GORM's own logging through zap
func gormLogger() logger.Interface {
	return logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             5 * time.Second, // full-table telemetry scans are expected to be slow
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// CreateConnection opens a connection and verifies it with a ping
func CreateConnection(ctx context.Context, connectionString string) (*gorm.DB, error) {
	log.Debugf("connecting to PostgreSQL...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: gormLogger()})
	if err != nil {
		log.Warnw("unable to create a PostgreSQL connection", "error", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return db, nil
}

// Close releases the pool behind a GORM handle
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
