package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // READING_TIMEZONE must resolve on images without zoneinfo

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string
	ServiceToken   string
	AllowedOrigins []string
	DBLogLevel     string

	ReadingTimezone  string
	MaxPagesPerEvent int

	SeedDefinitions         bool
	RegistryCacheSize       int
	RegistryRefreshInterval time.Duration

	ProfileSyncURL      string
	ProfileSyncPath     string
	ProfileSyncInterval time.Duration

	StreamInterval time.Duration

	NotifyURL         string
	NotifyInterval    time.Duration
	NotifyBatchSize   int
	NotifyConcurrency int
	NotifyLanguage    string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	return Config{
		Port:           getenv("PORT", "5300"),
		DatabaseURL:    getenv("DATABASE_URL", ""),
		ServiceToken:   getenv("SERVICE_TOKEN", ""),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000")),
		DBLogLevel:     getenv("DB_LOG_LEVEL", "warn"),

		ReadingTimezone:  getenv("READING_TIMEZONE", "Africa/Addis_Ababa"),
		MaxPagesPerEvent: getenvInt("MAX_PAGES_PER_EVENT", 1000),

		SeedDefinitions:         getenvBool("SEED_DEFINITIONS", true),
		RegistryCacheSize:       getenvInt("REGISTRY_CACHE_SIZE", 256),
		RegistryRefreshInterval: getenvDuration("REGISTRY_REFRESH_INTERVAL", 10*time.Minute),

		ProfileSyncURL:      getenv("PROFILE_SYNC_URL", ""),
		ProfileSyncPath:     getenv("PROFILE_SYNC_PATH", "/api/v1/public/profiles"),
		ProfileSyncInterval: getenvDuration("PROFILE_SYNC_INTERVAL", time.Minute),

		StreamInterval: getenvDuration("STREAM_INTERVAL", 5*time.Second),

		NotifyURL:         getenv("NOTIFY_URL", ""),
		NotifyInterval:    getenvDuration("NOTIFY_INTERVAL", 15*time.Second),
		NotifyBatchSize:   getenvInt("NOTIFY_BATCH_SIZE", 50),
		NotifyConcurrency: getenvInt("NOTIFY_CONCURRENCY", 4),
		NotifyLanguage:    getenv("NOTIFY_LANGUAGE", "en"),
	}
}

// Location resolves ReadingTimezone, falling back to UTC when the zone is unknown.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReadingTimezone)
	if err != nil {
		log.Printf("⚠️  Unknown READING_TIMEZONE %q, using UTC: %v", c.ReadingTimezone, err)
		return time.UTC
	}
	return loc
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
