package models

import (
	"time"

	"gorm.io/datatypes"
)

// AchievementDefinition: catalog entry (seeded, editable by operators)
type AchievementDefinition struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Type        string    `gorm:"uniqueIndex;not null;size:64" json:"type"` // e.g., "7_day_streak", "first_book"
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Icon        string    `gorm:"size:16" json:"icon"`
	XPReward    int64     `gorm:"not null" json:"xp_reward"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Achievement: awarded instance. At most one row per (user_id, type).
type Achievement struct {
	ID          string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string            `gorm:"not null;size:64;uniqueIndex:idx_achievements_user_type,priority:1" json:"user_id"`
	Type        string            `gorm:"not null;size:64;uniqueIndex:idx_achievements_user_type,priority:2" json:"type"`
	Title       string            `gorm:"not null" json:"title"`
	Description string            `json:"description"`
	XPReward    int64             `gorm:"not null" json:"xp_reward"`
	LeagueID    *uint             `gorm:"index" json:"league_id,omitempty"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"` // e.g., {"streak": 7, "tier": "Bronze"}
	EarnedAt    time.Time         `gorm:"not null;index" json:"earned_at"`
	IsNotified  bool              `gorm:"not null;index" json:"is_notified"`
}

// League-wide achievement types that carry no league_id but still count toward a league.
const (
	AchievementCommunityContributor = "community_contributor"
	AchievementLeagueChampion       = "league_champion"
)
