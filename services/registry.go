package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"reading-progress-service/models"

	lru "github.com/hashicorp/golang-lru"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementRegistry serves achievement definitions from an LRU cache in
// front of achievement_definitions. Misses are cached too.
type AchievementRegistry struct {
	db    *gorm.DB
	cache *lru.Cache
}

// missing marks a type that has no definition row.
type missing struct{}

func NewAchievementRegistry(db *gorm.DB, cacheSize int) (*AchievementRegistry, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create definition cache: %w", err)
	}
	return &AchievementRegistry{db: db, cache: cache}, nil
}

// Lookup returns the definition for achievementType, or ErrNotFound.
func (r *AchievementRegistry) Lookup(ctx context.Context, achievementType string) (*models.AchievementDefinition, error) {
	return r.lookup(r.db.WithContext(ctx), achievementType)
}

func (r *AchievementRegistry) lookup(tx *gorm.DB, achievementType string) (*models.AchievementDefinition, error) {
	if v, ok := r.cache.Get(achievementType); ok {
		if def, ok := v.(models.AchievementDefinition); ok {
			return &def, nil
		}
		return nil, fmt.Errorf("definition %q: %w", achievementType, ErrNotFound)
	}

	var def models.AchievementDefinition
	err := tx.Where("type = ?", achievementType).First(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.cache.Add(achievementType, missing{})
		return nil, fmt.Errorf("definition %q: %w", achievementType, ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("lookup definition", err)
	}

	r.cache.Add(achievementType, def)
	return &def, nil
}

// resolve fills title, description and XP for m from the registry, keeping
// the milestone's own values when no definition exists.
func (r *AchievementRegistry) resolve(tx *gorm.DB, m Milestone) (Milestone, error) {
	def, err := r.lookup(tx, m.Type)
	if errors.Is(err, ErrNotFound) {
		return m, nil
	}
	if err != nil {
		return m, err
	}
	m.Title = def.Title
	m.Description = def.Description
	m.XPReward = def.XPReward
	return m, nil
}

// Seed upserts the default catalog; operator edits to existing rows are overwritten.
func (r *AchievementRegistry) Seed(ctx context.Context) error {
	defs := DefaultDefinitions()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "icon", "xp_reward", "is_active", "updated_at"}),
	}).Create(&defs).Error
	if err != nil {
		return storageErr("seed definitions", err)
	}
	r.Purge()
	log.Printf("[REGISTRY] ✅ Seeded %d achievement definitions", len(defs))
	return nil
}

// ListActive returns the active definitions, cheapest first.
func (r *AchievementRegistry) ListActive(ctx context.Context) ([]models.AchievementDefinition, error) {
	var defs []models.AchievementDefinition
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("xp_reward ASC, type ASC").
		Find(&defs).Error; err != nil {
		return nil, storageErr("list definitions", err)
	}
	return defs, nil
}

// Purge drops every cached entry so edits in the table become visible.
func (r *AchievementRegistry) Purge() {
	r.cache.Purge()
}
