package services

import (
	"context"
	"fmt"
	"time"

	"reading-progress-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementLedger is the append-only record of awarded achievements.
// The (user_id, type) unique index is the single source of truth for "already awarded".
type AchievementLedger struct {
	db *gorm.DB
}

func NewAchievementLedger(db *gorm.DB) *AchievementLedger {
	return &AchievementLedger{db: db}
}

// leagueWideTypes count toward every league the reader belongs to.
var leagueWideTypes = []string{models.AchievementCommunityContributor, models.AchievementLeagueChampion}

func (l *AchievementLedger) Exists(ctx context.Context, userID, achievementType string) (bool, error) {
	return l.exists(l.db.WithContext(ctx), userID, achievementType)
}

func (l *AchievementLedger) exists(tx *gorm.DB, userID, achievementType string) (bool, error) {
	var count int64
	if err := tx.Model(&models.Achievement{}).
		Where("user_id = ? AND type = ?", userID, achievementType).
		Count(&count).Error; err != nil {
		return false, storageErr("check achievement", err)
	}
	return count > 0, nil
}

// Create appends rec, returning ErrAlreadyExists when the reader already holds the type.
func (l *AchievementLedger) Create(ctx context.Context, rec *models.Achievement) (*models.Achievement, error) {
	if err := l.create(l.db.WithContext(ctx), rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (l *AchievementLedger) create(tx *gorm.DB, rec *models.Achievement) error {
	if rec.UserID == "" || rec.Type == "" {
		return fmt.Errorf("%w: achievement needs user and type", ErrValidation)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.EarnedAt.IsZero() {
		rec.EarnedAt = time.Now().UTC()
	}

	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
		DoNothing: true,
	}).Create(rec)
	if res.Error != nil {
		return storageErr("create achievement", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("achievement %s for %s: %w", rec.Type, rec.UserID, ErrAlreadyExists)
	}
	return nil
}

// ListForUser returns the reader's achievements, newest first. limit <= 0 means all.
func (l *AchievementLedger) ListForUser(ctx context.Context, userID string, limit int) ([]models.Achievement, error) {
	var out []models.Achievement
	q := l.db.WithContext(ctx).Where("user_id = ?", userID).Order("earned_at DESC, type ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, storageErr("list achievements", err)
	}
	return out, nil
}

func (l *AchievementLedger) leagueScope(tx *gorm.DB, userID string, leagueID uint) *gorm.DB {
	return tx.Model(&models.Achievement{}).
		Where("user_id = ?", userID).
		Where(tx.Where("league_id = ?", leagueID).Or("type IN ?", leagueWideTypes))
}

// ListForLeague returns achievements earned in leagueID plus the league-wide ones.
func (l *AchievementLedger) ListForLeague(ctx context.Context, userID string, leagueID uint, limit int) ([]models.Achievement, error) {
	var out []models.Achievement
	q := l.leagueScope(l.db.WithContext(ctx), userID, leagueID).Order("earned_at DESC, type ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, storageErr("list league achievements", err)
	}
	return out, nil
}

func (l *AchievementLedger) CountForLeague(ctx context.Context, userID string, leagueID uint) (int64, error) {
	return l.countForLeague(l.db.WithContext(ctx), userID, leagueID)
}

func (l *AchievementLedger) countForLeague(tx *gorm.DB, userID string, leagueID uint) (int64, error) {
	var count int64
	if err := l.leagueScope(tx, userID, leagueID).Count(&count).Error; err != nil {
		return 0, storageErr("count league achievements", err)
	}
	return count, nil
}

// ListSince returns achievements earned strictly after since, oldest first.
func (l *AchievementLedger) ListSince(ctx context.Context, userID string, since time.Time) ([]models.Achievement, error) {
	var out []models.Achievement
	if err := l.db.WithContext(ctx).
		Where("user_id = ? AND earned_at > ?", userID, since).
		Order("earned_at ASC").
		Find(&out).Error; err != nil {
		return nil, storageErr("list recent achievements", err)
	}
	return out, nil
}

// ListUnnotified returns up to limit achievements not yet pushed to the notifier, oldest first.
func (l *AchievementLedger) ListUnnotified(ctx context.Context, limit int) ([]models.Achievement, error) {
	var out []models.Achievement
	q := l.db.WithContext(ctx).Where("is_notified = ?", false).Order("earned_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, storageErr("list unnotified achievements", err)
	}
	return out, nil
}

func (l *AchievementLedger) MarkNotified(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := l.db.WithContext(ctx).
		Model(&models.Achievement{}).
		Where("id IN ?", ids).
		Update("is_notified", true).Error; err != nil {
		return storageErr("mark notified", err)
	}
	return nil
}
