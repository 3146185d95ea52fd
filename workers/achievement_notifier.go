// workers/achievement_notifier.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"reading-progress-service/models"
	"reading-progress-service/services"
	"reading-progress-service/utils"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AchievementNotification is the payload posted to the notification endpoint.
type AchievementNotification struct {
	AchievementID string    `json:"achievement_id"`
	UserID        string    `json:"user_id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	XPReward      int64     `json:"xp_reward"`
	LeagueID      *uint     `json:"league_id,omitempty"`
	EarnedAt      time.Time `json:"earned_at"`
	Message       string    `json:"message"`
}

// AchievementNotifier pushes freshly minted achievements to an external
// notification endpoint and flags them as notified once delivered.
type AchievementNotifier struct {
	ledger     *services.AchievementLedger
	endpoint   string
	token      string
	batchSize  int
	sem        *semaphore.Weighted
	printer    *message.Printer
	httpClient *http.Client
}

func NewAchievementNotifier(ledger *services.AchievementLedger, endpoint, token string, batchSize, concurrency int, lang string) *AchievementNotifier {
	if batchSize <= 0 {
		batchSize = 50
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &AchievementNotifier{
		ledger:     ledger,
		endpoint:   endpoint,
		token:      token,
		batchSize:  batchSize,
		sem:        semaphore.NewWeighted(int64(concurrency)),
		printer:    message.NewPrinter(tag),
		httpClient: utils.NewHTTPClient(10 * time.Second),
	}
}

// Job wraps DispatchPending for the service scheduler.
func (n *AchievementNotifier) Job(every time.Duration) services.ScheduledJob {
	return services.ScheduledJob{
		Name:  "achievement-notifier",
		Every: every,
		Run:   n.DispatchPending,
	}
}

// DispatchPending delivers one batch of unnotified achievements. Failed
// deliveries stay unnotified and are retried on the next run.
func (n *AchievementNotifier) DispatchPending(ctx context.Context) error {
	pending, err := n.ledger.ListUnnotified(ctx, n.batchSize)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	var (
		mu        sync.Mutex
		delivered []string
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, a := range pending {
		a := a
		if err := n.sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer n.sem.Release(1)
			if err := n.send(gctx, a); err != nil {
				log.Printf("[NOTIFY] ⚠️ Delivery of %s to %s failed: %v", a.Type, a.UserID, err)
				return nil
			}
			mu.Lock()
			delivered = append(delivered, a.ID)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := n.ledger.MarkNotified(ctx, delivered); err != nil {
		return err
	}
	log.Printf("[NOTIFY] 🏆 Delivered %d/%d achievement notification(s)", len(delivered), len(pending))
	return nil
}

func (n *AchievementNotifier) send(ctx context.Context, a models.Achievement) error {
	payload := AchievementNotification{
		AchievementID: a.ID,
		UserID:        a.UserID,
		Type:          a.Type,
		Title:         a.Title,
		XPReward:      a.XPReward,
		LeagueID:      a.LeagueID,
		EarnedAt:      a.EarnedAt,
		Message:       n.printer.Sprintf("🏆 %s: %s (+%d XP)", a.Title, a.Description, a.XPReward),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", n.token)
	req.Header.Set("Idempotency-Key", a.ID)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
