package models

import "time"

type LeagueStatus string

const (
	LeagueStatusActive    LeagueStatus = "active"
	LeagueStatusCompleted LeagueStatus = "completed"
)

// League is managed elsewhere; progression only reads it.
type League struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Name          string       `gorm:"not null" json:"name"`
	CurrentBookID *uint        `json:"current_book_id,omitempty"`
	StartDate     *time.Time   `json:"start_date,omitempty"`
	EndDate       *time.Time   `json:"end_date,omitempty"`
	Status        LeagueStatus `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

type LeagueMember struct {
	LeagueID uint      `gorm:"primaryKey" json:"league_id"`
	UserID   string    `gorm:"primaryKey;size:64" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
	IsActive bool      `gorm:"not null" json:"is_active"`
}
