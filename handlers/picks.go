package handlers

import (
	"pickem-pool-system/middleware"
	"pickem-pool-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPickRoutes(app *fiber.App, pickService *services.PickService) {
	// 🔐 Player surface — needs a user context from the gateway
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/weeks/:id/picks", pickService.SubmitPicks)
	secured.Get("/weeks/:id/picks/mine", pickService.GetMyWeekPicks)
	secured.Get("/weeks/:id/picks", pickService.GetOthersPicks)
	secured.Get("/seasons/:id/picks/history", pickService.GetPickHistory)
}
