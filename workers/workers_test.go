package workers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"reading-progress-service/models"
	"reading-progress-service/services"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := services.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func TestReaderSyncWorker_SyncOnceUpsertsReaders(t *testing.T) {
	db := setupTestDB(t)
	updated := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	var gotToken, gotSince string
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/api/v1/public/profiles" {
			http.NotFound(w, r)
			return
		}
		gotToken = r.Header.Get("X-Service-Token")
		gotSince = r.URL.Query().Get("since")

		status := "active"
		if atomic.LoadInt32(&calls) > 1 {
			status = "suspended"
		}
		_ = json.NewEncoder(w).Encode(profileChangesResponse{Users: []RemoteProfile{
			{ExternalID: "u1", Username: "ada", FirstName: strPtr("Ada"), LastName: strPtr("Lovelace"), AccountStatus: status, CreatedAt: updated, UpdatedAt: updated},
			{ExternalID: "u2", Username: "bob", AccountStatus: "active", CreatedAt: updated, UpdatedAt: updated},
			{ExternalID: "", Username: "ghost"},
		}})
	}))
	defer srv.Close()

	w := NewReaderSyncWorker(db, srv.URL, "/api/v1/public/profiles", "svc-token", time.Minute)

	n, err := w.SyncOnce(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("SyncOnce: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 upserted readers, got %d", n)
	}
	if gotToken != "svc-token" {
		t.Errorf("expected service token header, got %q", gotToken)
	}
	if gotSince != "0001-01-01T00:00:00Z" {
		t.Errorf("unexpected since param %q", gotSince)
	}

	var ada models.Reader
	if err := db.First(&ada, "external_user_id = ?", "u1").Error; err != nil {
		t.Fatalf("reader u1 missing: %v", err)
	}
	if ada.DisplayName != "Ada Lovelace" || ada.IsBanned {
		t.Errorf("unexpected reader %+v", ada)
	}
	var bob models.Reader
	if err := db.First(&bob, "external_user_id = ?", "u2").Error; err != nil {
		t.Fatalf("reader u2 missing: %v", err)
	}
	if bob.DisplayName != "bob" {
		t.Errorf("expected username fallback, got %q", bob.DisplayName)
	}

	// Second pass flips u1 to suspended.
	if _, err := w.SyncOnce(context.Background(), w.lastSyncTime()); err != nil {
		t.Fatalf("second SyncOnce: %v", err)
	}
	if err := db.First(&ada, "external_user_id = ?", "u1").Error; err != nil {
		t.Fatalf("reader u1 missing: %v", err)
	}
	if !ada.IsBanned {
		t.Error("expected suspended reader to be banned")
	}
	var count int64
	db.Model(&models.Reader{}).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 readers, got %d", count)
	}
}

func TestReaderSyncWorker_SyncOnceErrorStatus(t *testing.T) {
	db := setupTestDB(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	w := NewReaderSyncWorker(db, srv.URL, "/profiles", "bad", time.Minute)
	if _, err := w.SyncOnce(context.Background(), time.Time{}); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestIsBanned(t *testing.T) {
	cases := map[string]bool{
		"active":      false,
		"":            false,
		"Suspended":   true,
		"banned":      true,
		"deactivated": true,
	}
	for status, want := range cases {
		if got := isBanned(status); got != want {
			t.Errorf("isBanned(%q) = %v, want %v", status, got, want)
		}
	}
}

func seedAchievement(t *testing.T, ledger *services.AchievementLedger, userID, typ string) *models.Achievement {
	t.Helper()
	a, err := ledger.Create(context.Background(), &models.Achievement{
		UserID:      userID,
		Type:        typ,
		Title:       "First Chapter",
		Description: "Finished a book",
		XPReward:    100,
	})
	if err != nil {
		t.Fatalf("failed to seed achievement: %v", err)
	}
	return a
}

func TestAchievementNotifier_DispatchPending(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewAchievementLedger(db)
	ok := seedAchievement(t, ledger, "u1", "first_book")
	failing := seedAchievement(t, ledger, "u2", "first_book")

	var (
		mu       sync.Mutex
		received []AchievementNotification
		keys     []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Service-Token") != "notify-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var n AchievementNotification
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		received = append(received, n)
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		mu.Unlock()
		if n.UserID == "u2" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	notifier := NewAchievementNotifier(ledger, srv.URL, "notify-token", 10, 2, "en")
	if err := notifier.DispatchPending(context.Background()); err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}

	if len(received) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(received))
	}
	for i, n := range received {
		if keys[i] != n.AchievementID {
			t.Errorf("idempotency key %q does not match achievement %q", keys[i], n.AchievementID)
		}
		if n.Message != "🏆 First Chapter: Finished a book (+100 XP)" {
			t.Errorf("unexpected message %q", n.Message)
		}
	}

	pending, err := ledger.ListUnnotified(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListUnnotified: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != failing.ID {
		t.Fatalf("expected only the failed delivery to remain pending, got %+v", pending)
	}

	var delivered models.Achievement
	if err := db.First(&delivered, "id = ?", ok.ID).Error; err != nil {
		t.Fatalf("load delivered: %v", err)
	}
	if !delivered.IsNotified {
		t.Error("expected delivered achievement to be flagged")
	}
}

func TestAchievementNotifier_NothingPending(t *testing.T) {
	db := setupTestDB(t)
	ledger := services.NewAchievementLedger(db)

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	notifier := NewAchievementNotifier(ledger, srv.URL, "t", 0, 0, "not-a-language-!!")
	if err := notifier.DispatchPending(context.Background()); err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Errorf("expected no requests, got %d", calls)
	}
	if job := notifier.Job(time.Second); job.Name != "achievement-notifier" || job.Every != time.Second {
		t.Errorf("unexpected job %+v", job)
	}
}
