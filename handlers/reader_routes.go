// handlers/reader_routes.go
package handlers

import (
	"reading-progress-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupReaderRoutes(secured fiber.Router, progressionService *services.ProgressionService) {
	secured.Get("/readers", func(c *fiber.Ctx) error {
		readers, err := progressionService.SearchReaders(c.UserContext(), c.Query("q"), queryLimit(c))
		if err != nil {
			return respondError(c, "search failed", err)
		}
		return c.JSON(readers)
	})
}
