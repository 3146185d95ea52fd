// handlers/achievement_routes.go
package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"reading-progress-service/middleware"
	"reading-progress-service/models"
	"reading-progress-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAchievementRoutes(app *fiber.App, secured fiber.Router, progressionService *services.ProgressionService, streamInterval time.Duration) {
	app.Get("/achievements/definitions", func(c *fiber.Ctx) error {
		defs, err := progressionService.Registry.ListActive(c.UserContext())
		if err != nil {
			return respondError(c, "failed to list definitions", err)
		}
		return c.JSON(defs)
	})

	secured.Get("/user/achievements", func(c *fiber.Ctx) error {
		list, err := progressionService.Ledger.ListForUser(c.UserContext(), middleware.UserID(c), queryLimit(c))
		if err != nil {
			return respondError(c, "failed to get achievements", err)
		}
		return c.JSON(list)
	})

	secured.Get("/user/achievements/stream", func(c *fiber.Ctx) error {
		return streamAchievements(c, progressionService.Ledger, streamInterval)
	})
}

// streamAchievements pushes newly minted achievements to the reader over SSE.
func streamAchievements(c *fiber.Ctx, ledger *services.AchievementLedger, interval time.Duration) error {
	userID := middleware.UserID(c)
	if interval <= 0 {
		interval = 2 * time.Second
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	done := c.Context().Done()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Start from the newest achievement already on the ledger.
		var cursor time.Time
		if latest, err := ledger.ListForUser(context.Background(), userID, 1); err != nil {
			log.Printf("[SSE] init error for user %s: %v", userID, err)
		} else if len(latest) > 0 {
			cursor = latest[0].EarnedAt
		}

		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				fresh, err := ledger.ListSince(ctx, userID, cursor)
				cancel()
				if err != nil {
					log.Printf("[SSE] query error for user %s: %v", userID, err)
					continue
				}

				if len(fresh) == 0 {
					// Keepalive comment; a failed flush means the client left.
					w.WriteString(":\n\n")
				} else {
					cursor = fresh[len(fresh)-1].EarnedAt
					writeAchievementEvents(w, fresh)
				}
				if err := w.Flush(); err != nil {
					return
				}

			case <-done:
				return
			}
		}
	})

	return nil
}

func writeAchievementEvents(w io.Writer, list []models.Achievement) {
	for _, a := range list {
		payload, err := json.Marshal(a)
		if err != nil {
			log.Printf("[SSE] encode error for achievement %s: %v", a.ID, err)
			continue
		}
		fmt.Fprintf(w, "id: %s\nevent: achievement\ndata: %s\n\n", a.ID, payload)
	}
}
