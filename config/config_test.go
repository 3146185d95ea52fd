package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MAX_PAGES_PER_EVENT", "NOTIFY_INTERVAL", "SEED_DEFINITIONS", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "5300" {
		t.Errorf("expected default port 5300, got %s", cfg.Port)
	}
	if cfg.MaxPagesPerEvent != 1000 {
		t.Errorf("expected default page cap 1000, got %d", cfg.MaxPagesPerEvent)
	}
	if cfg.NotifyInterval != 15*time.Second {
		t.Errorf("expected default notify interval 15s, got %v", cfg.NotifyInterval)
	}
	if !cfg.SeedDefinitions {
		t.Error("expected definitions to be seeded by default")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected default origins: %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MAX_PAGES_PER_EVENT", "250")
	t.Setenv("REGISTRY_REFRESH_INTERVAL", "90s")
	t.Setenv("SEED_DEFINITIONS", "false")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.MaxPagesPerEvent != 250 {
		t.Errorf("expected page cap 250, got %d", cfg.MaxPagesPerEvent)
	}
	if cfg.RegistryRefreshInterval != 90*time.Second {
		t.Errorf("expected 90s refresh, got %v", cfg.RegistryRefreshInterval)
	}
	if cfg.SeedDefinitions {
		t.Error("expected seeding to be disabled")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.AllowedOrigins)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_PAGES_PER_EVENT", "lots")
	t.Setenv("NOTIFY_INTERVAL", "soon")

	cfg := Load()

	if cfg.MaxPagesPerEvent != 1000 {
		t.Errorf("expected fallback page cap, got %d", cfg.MaxPagesPerEvent)
	}
	if cfg.NotifyInterval != 15*time.Second {
		t.Errorf("expected fallback interval, got %v", cfg.NotifyInterval)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := Config{ReadingTimezone: "Not/AZone"}
	if cfg.Location() != time.UTC {
		t.Errorf("expected UTC fallback, got %v", cfg.Location())
	}
}

func TestDefaultLocationResolves(t *testing.T) {
	t.Setenv("READING_TIMEZONE", "")
	t.Setenv("ZONEINFO", t.TempDir())

	loc := Load().Location()
	if loc.String() != "Africa/Addis_Ababa" {
		t.Fatalf("expected Africa/Addis_Ababa, got %v", loc)
	}
	// Midnight in Addis Ababa is 21:00 UTC the day before.
	local := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	if got := local.UTC(); got.Hour() != 21 || got.Day() != 9 {
		t.Errorf("unexpected UTC offset: %v", got)
	}
}
