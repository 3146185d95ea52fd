// handlers/routes.go
package handlers

import (
	"time"

	"reading-progress-service/middleware"
	"reading-progress-service/services"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes mounts every route. Routes under /s act for the reader named
// by the Gateway in X-User-ID.
func SetupRoutes(app *fiber.App, progression *services.ProgressionService, streamInterval time.Duration) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	SetupProgressionRoutes(secured, progression)
	SetupAchievementRoutes(app, secured, progression, streamInterval)
	SetupLeagueRoutes(app, secured, progression)
	SetupReaderRoutes(secured, progression)
}

// queryLimit reads ?limit=, defaulting to 50 and capping at 100.
func queryLimit(c *fiber.Ctx) int {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}
