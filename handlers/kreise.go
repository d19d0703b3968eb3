package handlers

import (
	"foerderkreis-service/middleware"
	"foerderkreis-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupKreisRoutes(app *fiber.App, kreisService *services.KreisService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/kreise", kreisService.GetAllKreise)
	secured.Post("/kreise", kreisService.CreateKreis)
	secured.Get("/kreise/:slug", kreisService.GetKreisBySlug)

	secured.Post("/kreise/:id/join", kreisService.JoinKreis)
	secured.Post("/kreise/:id/leave", kreisService.LeaveKreis)
}
