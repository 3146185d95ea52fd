// handlers/league_routes.go
package handlers

import (
	"reading-progress-service/middleware"
	"reading-progress-service/services"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type leagueCheckRequest struct {
	PagesReadInLeague *int64 `json:"pages_read_in_league,omitempty"`
}

func leagueID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "league id must be a positive integer")
	}
	return uint(id), nil
}

func SetupLeagueRoutes(app *fiber.App, secured fiber.Router, progressionService *services.ProgressionService) {
	secured.Post("/leagues/:id/achievements/check", func(c *fiber.Ctx) error {
		id, err := leagueID(c)
		if err != nil {
			return badRequest(c, err.Error(), nil)
		}
		userID := middleware.UserID(c)

		var req leagueCheckRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return badRequest(c, "invalid JSON", err)
			}
		}

		pages := int64(0)
		if req.PagesReadInLeague != nil {
			pages = *req.PagesReadInLeague
		} else {
			view, err := progressionService.GetLeagueProgressionView(c.UserContext(), userID, id)
			if err != nil {
				return respondError(c, "failed to compute league progress", err)
			}
			pages = int64(view.PagesReadInLeague)
		}

		minted, err := progressionService.CheckLeagueAchievements(c.UserContext(), userID, id, pages)
		if err != nil {
			return respondError(c, "failed to check league achievements", err)
		}
		return c.JSON(fiber.Map{
			"league_id":        id,
			"new_achievements": minted,
		})
	})

	secured.Get("/leagues/:id/progress", func(c *fiber.Ctx) error {
		id, err := leagueID(c)
		if err != nil {
			return badRequest(c, err.Error(), nil)
		}
		view, err := progressionService.GetLeagueProgressionView(c.UserContext(), middleware.UserID(c), id)
		if err != nil {
			return respondError(c, "failed to compute league progress", err)
		}
		return c.JSON(view)
	})

	secured.Get("/leagues/:id/achievements", func(c *fiber.Ctx) error {
		id, err := leagueID(c)
		if err != nil {
			return badRequest(c, err.Error(), nil)
		}
		list, err := progressionService.Ledger.ListForLeague(c.UserContext(), middleware.UserID(c), id, queryLimit(c))
		if err != nil {
			return respondError(c, "failed to get league achievements", err)
		}
		return c.JSON(list)
	})

	app.Get("/leagues/:id/leaderboard", func(c *fiber.Ctx) error {
		id, err := leagueID(c)
		if err != nil {
			return badRequest(c, err.Error(), nil)
		}
		entries, err := progressionService.Leagues.Leaderboard(c.UserContext(), id)
		if err != nil {
			return respondError(c, "failed to build leaderboard", err)
		}

		p := message.NewPrinter(displayLanguage(c.Query("lang")))
		rows := make([]fiber.Map, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, fiber.Map{
				"rank":             e.Rank,
				"user_id":          e.UserID,
				"display_name":     e.DisplayName,
				"pages_read":       e.PagesRead,
				"total_pages":      e.TotalPages,
				"progress_percent": e.ProgressPercent,
				"summary":          p.Sprintf("%d. %s: %.1f%% (%d/%d pages)", e.Rank, e.DisplayName, e.ProgressPercent, e.PagesRead, e.TotalPages),
			})
		}
		return c.JSON(fiber.Map{"league_id": id, "entries": rows})
	})
}

func displayLanguage(raw string) language.Tag {
	if raw == "" {
		return language.English
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return language.English
	}
	return tag
}
