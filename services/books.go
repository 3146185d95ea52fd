package services

import (
	"errors"
	"fmt"
	"time"

	"reading-progress-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookProgress is the outcome of recording pages against one book.
type BookProgress struct {
	BookID        uint
	PagesOnBook   int
	TotalPages    int
	JustCompleted bool
}

// BookTracker owns per-book progress and the session log. Every method runs
// on the caller's transaction.
type BookTracker interface {
	RecordProgress(tx *gorm.DB, ev ReadingEvent, day time.Time) (BookProgress, error)
	CompletedCount(tx *gorm.DB, userID string) (int, error)
	PagesReadOn(tx *gorm.DB, userID string, day time.Time) (int64, error)
}

type gormBookTracker struct{}

func NewBookTracker() BookTracker {
	return gormBookTracker{}
}

func (gormBookTracker) RecordProgress(tx *gorm.DB, ev ReadingEvent, day time.Time) (BookProgress, error) {
	var book models.Book
	if err := tx.First(&book, ev.BookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BookProgress{}, fmt.Errorf("book %d: %w", ev.BookID, ErrNotFound)
		}
		return BookProgress{}, storageErr("load book", err)
	}

	ub := models.UserBook{
		UserID:    ev.UserID,
		BookID:    book.ID,
		LeagueID:  ev.LeagueID,
		Status:    models.BookStatusActive,
		StartedAt: day,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoNothing: true,
	}).Create(&ub).Error; err != nil {
		return BookProgress{}, storageErr("insert user book", err)
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND book_id = ?", ev.UserID, book.ID).
		First(&ub).Error; err != nil {
		return BookProgress{}, storageErr("load user book", err)
	}

	wasCompleted := ub.Status == models.BookStatusCompleted
	ub.PagesRead += ev.PagesRead
	if ub.LeagueID == nil && ev.LeagueID != nil {
		ub.LeagueID = ev.LeagueID
	}

	progress := BookProgress{BookID: book.ID, TotalPages: book.TotalPages}
	if !wasCompleted && book.TotalPages > 0 && ub.PagesRead >= book.TotalPages {
		ub.Status = models.BookStatusCompleted
		completedAt := day
		ub.CompletedAt = &completedAt
		progress.JustCompleted = true
	}
	progress.PagesOnBook = ub.PagesRead

	if err := tx.Save(&ub).Error; err != nil {
		return BookProgress{}, storageErr("save user book", err)
	}

	session := models.ReadingSession{
		ID:          uuid.NewString(),
		UserID:      ev.UserID,
		BookID:      book.ID,
		LeagueID:    ev.LeagueID,
		SessionDate: day,
		PagesRead:   ev.PagesRead,
	}
	if err := tx.Create(&session).Error; err != nil {
		return BookProgress{}, storageErr("log session", err)
	}

	return progress, nil
}

func (gormBookTracker) CompletedCount(tx *gorm.DB, userID string) (int, error) {
	var count int64
	if err := tx.Model(&models.UserBook{}).
		Where("user_id = ? AND status = ?", userID, models.BookStatusCompleted).
		Count(&count).Error; err != nil {
		return 0, storageErr("count completed books", err)
	}
	return int(count), nil
}

// PagesReadOn sums the sessions logged for day (a UTC-midnight date).
func (gormBookTracker) PagesReadOn(tx *gorm.DB, userID string, day time.Time) (int64, error) {
	var total int64
	if err := tx.Model(&models.ReadingSession{}).
		Select("COALESCE(SUM(pages_read), 0)").
		Where("user_id = ? AND session_date >= ? AND session_date < ?", userID, day, day.AddDate(0, 0, 1)).
		Row().Scan(&total); err != nil {
		return 0, storageErr("sum daily pages", err)
	}
	return total, nil
}
