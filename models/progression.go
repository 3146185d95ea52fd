package models

import (
	"time"
)

// XPPerLevel is the amount of XP that separates two consecutive levels.
const XPPerLevel = 1000

// ProgressionState is the per-reader aggregate (denormalized for reads).
type ProgressionState struct {
	UserID string `gorm:"primaryKey;type:varchar(64)" json:"user_id"`

	// Streak
	CurrentStreak   int        `json:"current_streak" gorm:"not null;default:0"`
	LongestStreak   int        `json:"longest_streak" gorm:"not null;default:0"`
	LastReadingDate *time.Time `json:"last_reading_date,omitempty"`
	StreakStartDate *time.Time `json:"streak_start_date,omitempty"`

	// Progression
	XP    int64 `json:"xp" gorm:"not null;default:0"`
	Level int   `json:"level" gorm:"not null;default:1"`

	// Activity counters
	TotalPagesRead    int64 `json:"total_pages_read" gorm:"not null;default:0"`
	BooksCompleted    int   `json:"books_completed" gorm:"not null;default:0"`
	TotalAchievements int   `json:"total_achievements" gorm:"not null;default:0"`

	Timestamps
}

func (ProgressionState) TableName() string { return "user_stats" }

// LevelForXP derives the level from accumulated XP.
func LevelForXP(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/XPPerLevel) + 1
}

// NewProgressionState returns the zero state a reader starts with.
func NewProgressionState(userID string) ProgressionState {
	return ProgressionState{UserID: userID, Level: 1}
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
