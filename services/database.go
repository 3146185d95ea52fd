package services

import (
	"log"
	"os"
	"strings"
	"time"

	"reading-progress-service/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase connects to Postgres with the service's gorm logger.
func OpenDatabase(dsn, logLevel string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: NewGormLogger(logLevel)})
}

// NewGormLogger maps DB_LOG_LEVEL onto gorm's logger.
func NewGormLogger(level string) logger.Interface {
	lvl := logger.Warn
	switch strings.ToLower(level) {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}

	return logger.New(
		log.New(os.Stdout, "[DB] ", log.LstdFlags),
		logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// AutoMigrate creates or updates every table the service owns or reads.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Reader{},
		&models.ProgressionState{},
		&models.AchievementDefinition{},
		&models.Achievement{},
		&models.Book{},
		&models.UserBook{},
		&models.ReadingSession{},
		&models.League{},
		&models.LeagueMember{},
	)
}
