package services

import (
	"context"
	"testing"
	"time"

	"reading-progress-service/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fixedNow is "now" for every engine built by newTestService: 2026-03-10 12:00 UTC.
var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	// One connection keeps the in-memory database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *ProgressionService {
	t.Helper()

	registry, err := NewAchievementRegistry(db, 64)
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	return NewProgressionService(db, registry, ProgressionOptions{
		Location:         time.UTC,
		MaxPagesPerEvent: 1000,
		Now:              func() time.Time { return fixedNow },
	})
}

func seedReader(t *testing.T, db *gorm.DB, userID string) {
	t.Helper()
	if err := db.Create(&models.Reader{ExternalUserID: userID, Username: userID, DisplayName: "Reader " + userID}).Error; err != nil {
		t.Fatalf("failed to seed reader: %v", err)
	}
}

func seedBook(t *testing.T, db *gorm.DB, totalPages int) uint {
	t.Helper()
	book := models.Book{Title: "Book", Author: "Author", TotalPages: totalPages}
	if err := db.Create(&book).Error; err != nil {
		t.Fatalf("failed to seed book: %v", err)
	}
	return book.ID
}

func seedLeague(t *testing.T, db *gorm.DB, bookID *uint, members ...string) uint {
	t.Helper()
	league := models.League{Name: "League", CurrentBookID: bookID, Status: models.LeagueStatusActive}
	if err := db.Create(&league).Error; err != nil {
		t.Fatalf("failed to seed league: %v", err)
	}
	for _, m := range members {
		if err := db.Create(&models.LeagueMember{LeagueID: league.ID, UserID: m, IsActive: true}).Error; err != nil {
			t.Fatalf("failed to seed member: %v", err)
		}
	}
	return league.ID
}

func seedState(t *testing.T, db *gorm.DB, state models.ProgressionState) {
	t.Helper()
	if err := db.Create(&state).Error; err != nil {
		t.Fatalf("failed to seed state: %v", err)
	}
}

func seedUserBook(t *testing.T, db *gorm.DB, userID string, bookID uint, pages int, status models.BookStatus) {
	t.Helper()
	ub := models.UserBook{UserID: userID, BookID: bookID, PagesRead: pages, Status: status, StartedAt: day(-30)}
	if err := db.Create(&ub).Error; err != nil {
		t.Fatalf("failed to seed user book: %v", err)
	}
}

func read(t *testing.T, svc *ProgressionService, userID string, bookID uint, pages int) *ApplyResult {
	t.Helper()
	res, err := svc.ApplyReadingEvent(context.Background(), ReadingEvent{UserID: userID, BookID: bookID, PagesRead: pages})
	if err != nil {
		t.Fatalf("ApplyReadingEvent failed: %v", err)
	}
	return res
}

func achievementTypes(list []models.Achievement) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Type)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
