// services/readers.go
package services

import (
	"context"
	"strings"

	"reading-progress-service/models"
)

// ReaderSummary is the public view of a mirrored reader.
type ReaderSummary struct {
	ExternalUserID string `json:"external_user_id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SearchReaders matches username or display name, case-insensitively.
// Banned readers are never returned.
func (s *ProgressionService) SearchReaders(ctx context.Context, query string, limit int) ([]ReaderSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := s.DB.WithContext(ctx).
		Model(&models.Reader{}).
		Where("is_banned = ?", false).
		Order("username ASC").
		Limit(limit)
	if term := strings.ToLower(strings.TrimSpace(query)); term != "" {
		like := "%" + likeEscaper.Replace(term) + "%"
		q = q.Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(display_name) LIKE ? ESCAPE '\'`, like, like)
	}

	var readers []models.Reader
	if err := q.Find(&readers).Error; err != nil {
		return nil, storageErr("search readers", err)
	}

	out := make([]ReaderSummary, len(readers))
	for i, r := range readers {
		out[i] = ReaderSummary{
			ExternalUserID: r.ExternalUserID,
			Username:       r.Username,
			DisplayName:    r.DisplayName,
		}
	}
	return out, nil
}
