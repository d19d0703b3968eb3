package handlers

import (
	"foerderkreis-service/middleware"
	"foerderkreis-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupJobRoutes(app *fiber.App, jobService *services.JobService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/jobs", jobService.GetAllJobs)
	secured.Post("/jobs", jobService.CreateJob)
	secured.Get("/jobs/:id", jobService.GetJobByID)

	// Claim lifecycle — the only writers of job/claim status
	secured.Post("/jobs/:id/claim", jobService.ClaimJob)
	secured.Post("/jobs/:id/complete", jobService.CompleteJobClaim)
	secured.Post("/jobs/:id/withdraw", jobService.WithdrawClaim)

	secured.Post("/jobs/:id/cancel", jobService.CancelJob)
}
