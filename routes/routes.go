package routes

import (
	"skillswap_server/config"
	"skillswap_server/middlewares"
	"skillswap_server/socket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
)

// SetRoutes sets all routes of server
func SetRoutes(app *fiber.App) {
	api := app.Group(config.Config.Version)
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.Config.Origin,
		AllowCredentials: true,
	}))

	app.Use("/stream", middlewares.AuthenticateStream, websocket.New(socket.Stream))

	authRoutes(api)
	profileRoutes(api)
	listingRoutes(api)
	exchangeRoutes(api)
	messageRoutes(api)
	sessionRoutes(api)
	inboxRoutes(api)
}
