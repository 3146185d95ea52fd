// workers/reader_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reading-progress-service/models"
	"reading-progress-service/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RemoteProfile matches the profile service's change feed.
type RemoteProfile struct {
	ExternalID    string    `json:"external_id"`
	Username      string    `json:"username"`
	FirstName     *string   `json:"first_name,omitempty"`
	LastName      *string   `json:"last_name,omitempty"`
	AccountStatus string    `json:"account_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type profileChangesResponse struct {
	Users []RemoteProfile `json:"users"`
}

// ReaderSyncWorker mirrors registered readers from the profile service into
// the readers table.
type ReaderSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8500"
	endpointPath string // e.g., "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
}

func NewReaderSyncWorker(db *gorm.DB, baseURL, endpointPath, serviceToken string, interval time.Duration) *ReaderSyncWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReaderSyncWorker{
		db:           db,
		interval:     interval,
		baseURL:      baseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   utils.NewHTTPClient(30 * time.Second),
	}
}

func (w *ReaderSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Reader Sync Worker (profile service → readers)…")
	go w.run(ctx)
}

func (w *ReaderSyncWorker) run(ctx context.Context) {
	// Initial sync backfills from the beginning of time.
	if _, err := w.SyncOnce(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ [SYNC] Initial sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.SyncOnce(ctx, w.lastSyncTime()); err != nil {
				log.Printf("❌ [SYNC] Sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Reader Sync Worker stopped")
			return
		}
	}
}

// lastSyncTime is the newest updated_at among mirrored readers.
func (w *ReaderSyncWorker) lastSyncTime() time.Time {
	var latest models.Reader
	err := w.db.Order("updated_at DESC").First(&latest).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("⚠️ [SYNC] Could not read last sync time: %v", err)
		}
		return time.Unix(0, 0)
	}
	return latest.UpdatedAt
}

// SyncOnce fetches profile changes since the given time and upserts them,
// returning how many readers were written.
func (w *ReaderSyncWorker) SyncOnce(ctx context.Context, since time.Time) (int, error) {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return 0, fmt.Errorf("invalid profile service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request to profile service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("profile service returned %d: %s", resp.StatusCode, string(body))
	}

	var response profileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("failed to decode profile service response: %w", err)
	}
	if len(response.Users) == 0 {
		return 0, nil
	}

	var upserted, failed int
	for _, remote := range response.Users {
		if remote.ExternalID == "" {
			failed++
			continue
		}
		reader := models.Reader{
			ExternalUserID: remote.ExternalID,
			Username:       remote.Username,
			DisplayName:    displayName(remote),
			IsBanned:       isBanned(remote.AccountStatus),
			CreatedAt:      remote.CreatedAt,
			UpdatedAt:      remote.UpdatedAt,
		}
		if err := w.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "display_name", "is_banned", "updated_at"}),
		}).Create(&reader).Error; err != nil {
			failed++
			log.Printf("[SYNC] ⚠️ Failed to upsert reader %q: %v", remote.ExternalID, err)
			continue
		}
		upserted++
	}

	log.Printf("[SYNC] ✅ Synced %d reader(s) (%d upserted, %d errors)", len(response.Users), upserted, failed)
	return upserted, nil
}

func displayName(p RemoteProfile) string {
	var parts []string
	for _, s := range []*string{p.FirstName, p.LastName} {
		if s != nil && strings.TrimSpace(*s) != "" {
			parts = append(parts, strings.TrimSpace(*s))
		}
	}
	if len(parts) == 0 {
		return p.Username
	}
	return strings.Join(parts, " ")
}

func isBanned(status string) bool {
	switch strings.ToLower(status) {
	case "banned", "suspended", "deactivated":
		return true
	}
	return false
}
