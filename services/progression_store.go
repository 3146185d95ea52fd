package services

import (
	"context"
	"errors"

	"reading-progress-service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressionStore persists ProgressionState rows. It knows nothing about achievements.
type ProgressionStore struct {
	db *gorm.DB
}

func NewProgressionStore(db *gorm.DB) *ProgressionStore {
	return &ProgressionStore{db: db}
}

// GetOrCreate returns the reader's state, inserting the zero state first if needed.
func (s *ProgressionStore) GetOrCreate(ctx context.Context, userID string) (*models.ProgressionState, error) {
	return s.getOrCreate(s.db.WithContext(ctx), userID, false)
}

// getOrCreate inserts with ON CONFLICT DO NOTHING and then selects, so two
// concurrent first events never race on the insert. With lock set the row
// stays locked until tx ends.
func (s *ProgressionStore) getOrCreate(tx *gorm.DB, userID string, lock bool) (*models.ProgressionState, error) {
	fresh := models.NewProgressionState(userID)
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return nil, storageErr("insert progression", err)
	}

	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var state models.ProgressionState
	if err := q.Where("user_id = ?", userID).First(&state).Error; err != nil {
		return nil, storageErr("load progression", err)
	}
	return &state, nil
}

// Save writes every field of state.
func (s *ProgressionStore) Save(ctx context.Context, state *models.ProgressionState) error {
	return s.save(s.db.WithContext(ctx), state)
}

func (s *ProgressionStore) save(tx *gorm.DB, state *models.ProgressionState) error {
	if err := tx.Save(state).Error; err != nil {
		return storageErr("save progression", err)
	}
	return nil
}

// Snapshot reads the state without creating it; unknown readers get the zero state.
func (s *ProgressionStore) Snapshot(ctx context.Context, userID string) (models.ProgressionState, error) {
	var state models.ProgressionState
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewProgressionState(userID), nil
	}
	if err != nil {
		return state, storageErr("read progression", err)
	}
	return state, nil
}
