// handlers/progression_routes.go
package handlers

import (
	"time"

	"reading-progress-service/middleware"
	"reading-progress-service/models"
	"reading-progress-service/services"
	"reading-progress-service/utils"

	"github.com/gofiber/fiber/v2"
)

type readingEventRequest struct {
	BookID     uint   `json:"book_id"`
	PagesRead  int    `json:"pages_read"`
	LeagueID   *uint  `json:"league_id,omitempty"`
	OccurredOn string `json:"occurred_on,omitempty"` // YYYY-MM-DD in the reading timezone
}

func SetupProgressionRoutes(secured fiber.Router, progressionService *services.ProgressionService) {
	secured.Post("/reading/events", func(c *fiber.Ctx) error {
		var req readingEventRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid JSON", err)
		}

		ev := services.ReadingEvent{
			UserID:    middleware.UserID(c),
			BookID:    req.BookID,
			PagesRead: req.PagesRead,
			LeagueID:  req.LeagueID,
		}
		if req.OccurredOn != "" {
			occurred, err := utils.ParseDay(req.OccurredOn, progressionService.Location())
			if err != nil {
				return badRequest(c, "occurred_on must be YYYY-MM-DD", err)
			}
			ev.OccurredOn = occurred
		}

		result, err := progressionService.ApplyReadingEvent(c.UserContext(), ev)
		if err != nil {
			return respondError(c, "failed to record reading", err)
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	})

	secured.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)
		prog, err := progressionService.GetProgressionSnapshot(c.UserContext(), userID)
		if err != nil {
			return respondError(c, "failed to get progress", err)
		}
		return c.JSON(progressResponse(prog, progressionService.Today()))
	})
}

func progressResponse(prog models.ProgressionState, today time.Time) fiber.Map {
	xpIntoLevel := prog.XP - int64(prog.Level-1)*models.XPPerLevel
	readToday := prog.LastReadingDate != nil && utils.DaysBetween(*prog.LastReadingDate, today) == 0

	return fiber.Map{
		"user_id":            prog.UserID,
		"xp":                 prog.XP,
		"level":              prog.Level,
		"xp_into_level":      xpIntoLevel,
		"xp_to_next_level":   models.XPPerLevel - xpIntoLevel,
		"current_streak":     prog.CurrentStreak,
		"longest_streak":     prog.LongestStreak,
		"streak_tier":        services.StreakTier(prog.CurrentStreak),
		"last_reading_date":  prog.LastReadingDate,
		"streak_start_date":  prog.StreakStartDate,
		"read_today":         readToday,
		"total_pages_read":   prog.TotalPagesRead,
		"books_completed":    prog.BooksCompleted,
		"total_achievements": prog.TotalAchievements,
	}
}
