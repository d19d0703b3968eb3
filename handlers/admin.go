package handlers

import (
	"foerderkreis-service/middleware"
	"foerderkreis-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, adminService *services.AdminService, userService *services.UserService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/leaderboard", adminService.GetLeaderboard)
	secured.Get("/users/me", userService.GetMe)
	secured.Get("/users/search", userService.SearchUsers)

	// 🔒 Admin-only routes (role checked against the local user mirror)
	admin := secured.Group("/admin")
	admin.Get("/families", adminService.GetAllFamilies)
	admin.Put("/families/:id", adminService.UpdateFamily)
	admin.Get("/export", adminService.GetExportData)
	admin.Get("/hours/flagged", adminService.GetFlaggedEntries)
}
