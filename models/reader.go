package models

import "time"

// Reader mirrors a registered user from the profile service.
type Reader struct {
	ExternalUserID string    `gorm:"primaryKey;size:64" json:"external_user_id"`
	Username       string    `gorm:"index" json:"username"`
	DisplayName    string    `json:"display_name"`
	IsBanned       bool      `json:"is_banned" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
