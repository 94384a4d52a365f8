package routes

import (
	"skillswap_server/middlewares"
	"skillswap_server/services"

	"github.com/gofiber/fiber/v2"
)

func listingRoutes(api fiber.Router) {
	listings := api.Group("listings")
	listings.Use(middlewares.Authenticate)
	listings.Get("/", services.BrowseListings)
	listings.Post("/", services.CreateListing)
	listings.Get("/mine", services.GetMyListings)
	listings.Put("/:listingID", services.UpdateListing)
	listings.Delete("/:listingID", services.DeleteListing)
}
