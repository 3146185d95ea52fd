package models

import (
	"time"
)

type BookStatus string

const (
	BookStatusActive    BookStatus = "active"
	BookStatusCompleted BookStatus = "completed"
)

// Book is owned by the catalog; only the page count matters here.
type Book struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Author     string    `json:"author"`
	TotalPages int       `gorm:"not null" json:"total_pages"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserBook is a reader's cumulative progress on one book.
type UserBook struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      string     `gorm:"not null;size:64;uniqueIndex:idx_user_books_user_book,priority:1" json:"user_id"`
	BookID      uint       `gorm:"not null;uniqueIndex:idx_user_books_user_book,priority:2" json:"book_id"`
	LeagueID    *uint      `gorm:"index" json:"league_id,omitempty"`
	PagesRead   int        `gorm:"not null" json:"pages_read"`
	Status      BookStatus `gorm:"type:varchar(16);not null" json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// ReadingSession is one accepted reading event; the daily page totals are summed from here.
type ReadingSession struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string    `gorm:"not null;size:64;index:idx_sessions_user_date,priority:1" json:"user_id"`
	BookID      uint      `gorm:"not null;index" json:"book_id"`
	LeagueID    *uint     `gorm:"index" json:"league_id,omitempty"`
	SessionDate time.Time `gorm:"not null;index:idx_sessions_user_date,priority:2" json:"session_date"`
	PagesRead   int       `gorm:"not null" json:"pages_read"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
