package routes

import (
	"skillswap_server/middlewares"
	"skillswap_server/services"

	"github.com/gofiber/fiber/v2"
)

func sessionRoutes(api fiber.Router) {
	sessions := api.Group("sessions")
	sessions.Use(middlewares.Authenticate)
	sessions.Get("/", services.GetUpcomingSessions)
	sessions.Post("/", services.ScheduleSession)
	sessions.Post("/:sessionID/complete", services.CompleteSession)

	progress := api.Group("progress")
	progress.Use(middlewares.Authenticate)
	progress.Get("/", services.GetProgressRequests)
	progress.Post("/:requestID/confirm", services.ConfirmProgress)
}

func inboxRoutes(api fiber.Router) {
	inbox := api.Group("inbox")
	inbox.Use(middlewares.Authenticate)
	inbox.Get("/", services.GetInbox)
}
