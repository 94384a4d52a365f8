package routes

import (
	"skillswap_server/middlewares"
	"skillswap_server/services"

	"github.com/gofiber/fiber/v2"
)

func profileRoutes(api fiber.Router) {
	profile := api.Group("profile")
	profile.Use(middlewares.Authenticate)
	profile.Get("/", services.GetProfile)
	profile.Put("/", services.UpdateProfile)
	profile.Post("/avatar", services.UploadAvatar)
	profile.Get("/preferences", services.GetPreferences)
	profile.Put("/preferences", services.UpdatePreferences)
	profile.Get("/dashboard", services.GetDashboard)
	profile.Get("/:userID", services.GetPublicProfile)
}
