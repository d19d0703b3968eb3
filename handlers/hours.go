package handlers

import (
	"foerderkreis-service/middleware"
	"foerderkreis-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupHourRoutes(app *fiber.App, hoursService *services.HoursService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/hours", hoursService.LogHours)
	secured.Get("/hours", hoursService.GetHistory)
	secured.Put("/hours/:id", hoursService.UpdateHours)
	secured.Delete("/hours/:id", hoursService.DeleteHours)
	secured.Get("/hours/summary", hoursService.GetFamilySummary)

	secured.Patch("/hours/:id/flag", hoursService.FlagEntry)
}
