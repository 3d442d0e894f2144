package handlers

import (
	"pickem-pool-system/middleware"
	"pickem-pool-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, seasonService *services.SeasonService, scoringService *services.ScoringService, userService *services.UserService) {
	// 🔒 Commissioner surface — everything here mutates the pool
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.AdminRequired())

	// Seasons & entries
	admin.Post("/seasons", seasonService.CreateSeason)
	admin.Post("/seasons/:id/entries", seasonService.UpsertSeasonEntry)
	admin.Get("/seasons/:id/entries", seasonService.GetSeasonEntries)

	// Week lifecycle
	admin.Put("/weeks/:id", scoringService.UpdateWeek)
	admin.Patch("/weeks/:id/toggle-open", scoringService.ToggleWeekOpen)
	admin.Post("/weeks/:id/calculate", scoringService.CalculateResults)
	admin.Post("/weeks/:id/complete", scoringService.CompleteWeek)

	// Games
	admin.Post("/weeks/:id/games", scoringService.AddGame)
	admin.Put("/games/:id", scoringService.UpdateGame)
	admin.Delete("/games/:id", scoringService.DeleteGame)

	// Members
	admin.Post("/users", userService.CreateUser)
	admin.Patch("/users/:id/toggle-active", userService.ToggleActive)
}
