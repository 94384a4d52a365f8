package routes

import (
	"skillswap_server/middlewares"
	"skillswap_server/services"

	"github.com/gofiber/fiber/v2"
)

func exchangeRoutes(api fiber.Router) {
	exchanges := api.Group("exchanges")
	exchanges.Use(middlewares.Authenticate)
	exchanges.Get("/", services.GetExchanges)
	exchanges.Post("/propose", services.ProposeExchange)
	exchanges.Post("/:exchangeID/accept", services.AcceptExchange)
	exchanges.Post("/:exchangeID/decline", services.DeclineExchange)
	exchanges.Post("/:exchangeID/abandon", services.AbandonExchange)
}
