package services

import (
	"context"
	"errors"
	"testing"

	"reading-progress-service/models"
)

func TestRegistryLookupFallsBackToNotFound(t *testing.T) {
	db := setupTestDB(t)
	registry, err := NewAchievementRegistry(db, 8)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := registry.Lookup(context.Background(), "7_day_streak"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	m, err := registry.resolve(db, StreakMilestones[2])
	if err != nil {
		t.Fatal(err)
	}
	if m.Title != "7-Day Streak" || m.XPReward != 50 {
		t.Errorf("expected fallback values, got %+v", m)
	}
}

func TestRegistrySeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	registry, err := NewAchievementRegistry(db, 8)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := registry.Seed(ctx); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	if err := registry.Seed(ctx); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	var count int64
	db.Model(&models.AchievementDefinition{}).Count(&count)
	if int(count) != len(DefaultDefinitions()) {
		t.Errorf("expected %d definitions, got %d", len(DefaultDefinitions()), count)
	}

	def, err := registry.Lookup(ctx, "7_day_streak")
	if err != nil {
		t.Fatal(err)
	}
	if def.Title != "🥉 One Week Reader" || def.XPReward != 50 {
		t.Errorf("unexpected definition: %+v", def)
	}

	active, err := registry.ListActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != len(DefaultDefinitions()) || active[0].XPReward > active[len(active)-1].XPReward {
		t.Errorf("expected all definitions ordered by xp, got %d", len(active))
	}
}

func TestRegistryCacheAndPurge(t *testing.T) {
	db := setupTestDB(t)
	registry, err := NewAchievementRegistry(db, 8)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	// Miss is cached.
	if _, err := registry.Lookup(ctx, "speed_reader"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected miss, got %v", err)
	}
	if err := db.Create(&models.AchievementDefinition{Type: "speed_reader", Title: "Fast", XPReward: 150, IsActive: true}).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := registry.Lookup(ctx, "speed_reader"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cached miss, got %v", err)
	}

	registry.Purge()
	def, err := registry.Lookup(ctx, "speed_reader")
	if err != nil {
		t.Fatalf("expected definition after purge, got %v", err)
	}
	if def.XPReward != 150 {
		t.Errorf("expected 150 xp, got %d", def.XPReward)
	}

	// Hit is cached too.
	db.Model(&models.AchievementDefinition{}).Where("type = ?", "speed_reader").Update("xp_reward", 999)
	def, _ = registry.Lookup(ctx, "speed_reader")
	if def.XPReward != 150 {
		t.Errorf("expected cached 150 xp, got %d", def.XPReward)
	}
}

func TestRegistryRefreshJobPurges(t *testing.T) {
	db := setupTestDB(t)
	registry, err := NewAchievementRegistry(db, 8)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	_, _ = registry.Lookup(ctx, "first_book")
	db.Create(&models.AchievementDefinition{Type: "first_book", Title: "First", XPReward: 100, IsActive: true})

	job := RegistryRefreshJob(registry, 0)
	if err := job.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := registry.Lookup(ctx, "first_book"); err != nil {
		t.Errorf("expected fresh lookup after refresh, got %v", err)
	}
}
