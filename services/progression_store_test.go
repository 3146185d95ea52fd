package services

import (
	"context"
	"testing"

	"reading-progress-service/models"

	"golang.org/x/sync/errgroup"
)

func TestProgressionStoreGetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	store := NewProgressionStore(db)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 6; i++ {
		g.Go(func() error {
			_, err := store.GetOrCreate(ctx, "u1")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	var count int64
	db.Model(&models.ProgressionState{}).Where("user_id = ?", "u1").Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one row, got %d", count)
	}

	state, err := store.GetOrCreate(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if state.Level != 1 || state.XP != 0 || state.CurrentStreak != 0 {
		t.Errorf("expected zero state, got %+v", state)
	}
}

func TestProgressionStoreSave(t *testing.T) {
	db := setupTestDB(t)
	store := NewProgressionStore(db)
	ctx := context.Background()

	state, err := store.GetOrCreate(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	state.XP = 1200
	state.Level = 2
	state.CurrentStreak = 3
	state.LongestStreak = 3
	state.LastReadingDate = ptr(day(0))
	if err := store.Save(ctx, state); err != nil {
		t.Fatal(err)
	}

	// Zero values must be written too.
	state.CurrentStreak = 0
	if err := store.Save(ctx, state); err != nil {
		t.Fatal(err)
	}

	got, err := store.Snapshot(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.XP != 1200 || got.Level != 2 || got.CurrentStreak != 0 || got.LongestStreak != 3 {
		t.Errorf("unexpected saved state: %+v", got)
	}
	if got.LastReadingDate == nil || !got.LastReadingDate.Equal(day(0)) {
		t.Errorf("unexpected last reading date: %v", got.LastReadingDate)
	}
}
