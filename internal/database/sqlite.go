package database

import (
	"fmt"

	"github.com/phuslu/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codyseavey/goblin-bookie/internal/models"
)

var DB *gorm.DB

// Initialize opens the database at dbPath, migrates it and stores it as the
// package default
func Initialize(dbPath, level string) error {
	db, err := Open(dbPath, level)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open connects to the SQLite database at dbPath and migrates the schema.
// ":memory:" gives a private in-memory database.
func Open(dbPath, level string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(level)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}

	// SQLite allows one writer; an in-memory database also lives per connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	log.Info().Str("path", dbPath).Msg("Database connected successfully")

	if err := cleanupDuplicateCardViews(db); err != nil {
		return nil, fmt.Errorf("failed to clean up card views: %w", err)
	}

	if err := db.AutoMigrate(&models.CardSnapshot{}, &models.CardView{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	log.Info().Msg("Database migration completed")
	return db, nil
}

func GetDB() *gorm.DB {
	return DB
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "trace", "debug":
		return logger.Info
	case "info", "warn", "":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}
