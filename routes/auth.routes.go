package routes

import (
	"skillswap_server/middlewares"
	"skillswap_server/services"

	"github.com/gofiber/fiber/v2"
)

func authRoutes(api fiber.Router) {
	auth := api.Group("auth")
	auth.Post("/register", services.Register)
	auth.Post("/resend-verification", services.ResendVerification)
	auth.Post("/verify-email", services.VerifyEmail)
	auth.Post("/login", services.Login)

	session := api.Group("auth")
	session.Use(middlewares.Authenticate)
	session.Post("/logout", services.Logout)
}
