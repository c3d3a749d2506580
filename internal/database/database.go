package database

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dhkim-dev/markethub-backend/internal/config"
	"github.com/dhkim-dev/markethub-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	connectOnce sync.Once
	conn        *gorm.DB
	connectErr  error
)

// Connect opens the shared connection pool exactly once; concurrent callers
// all get the same handle. TranslateError turns Postgres unique violations
// into gorm.ErrDuplicatedKey so callers can map them to a conflict.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	connectOnce.Do(func() {
		conn, connectErr = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		})
		if connectErr != nil {
			connectErr = fmt.Errorf("failed to connect to database: %w", connectErr)
			return
		}

		sqlDB, err := conn.DB()
		if err != nil {
			connectErr = fmt.Errorf("failed to get sql.DB: %w", err)
			return
		}

		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)

		slog.Info("database connected", "host", cfg.DBHost, "db", cfg.DBName)
	})
	return conn, connectErr
}

// MigrateShared runs AutoMigrate for models every request path depends on.
func MigrateShared(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.SystemLog{},
	)
}

// MigrateModels runs AutoMigrate for arbitrary models (used by app plugins).
func MigrateModels(db *gorm.DB, modelList []interface{}) error {
	if len(modelList) == 0 {
		return nil
	}
	return db.AutoMigrate(modelList...)
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close releases the underlying pool on shutdown.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
