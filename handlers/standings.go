package handlers

import (
	"pickem-pool-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupStandingsRoutes(app *fiber.App, seasonService *services.SeasonService, scoringService *services.ScoringService, standingsService *services.StandingsService, prizeService *services.PrizeService, userService *services.UserService) {
	// 🔓 Read-only pool views
	app.Get("/seasons", seasonService.GetSeasons)
	app.Get("/seasons/:id", seasonService.GetSeasonByID)
	app.Get("/users", userService.ListUsers)

	app.Get("/weeks/:id/results", scoringService.GetWeekResults)

	app.Get("/seasons/:id/standings", standingsService.GetStandings)
	app.Get("/seasons/:id/prizes/yearly", standingsService.GetYearlyPrize)
	app.Get("/seasons/:id/prizes/weekly", prizeService.GetWeeklyPrize)
	app.Get("/seasons/:id/prizes/pool", prizeService.GetPrizePool)
}
