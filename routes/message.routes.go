package routes

import (
	"skillswap_server/middlewares"
	"skillswap_server/services"

	"github.com/gofiber/fiber/v2"
)

func messageRoutes(api fiber.Router) {
	chats := api.Group("chats")
	chats.Use(middlewares.Authenticate)
	chats.Get("/", services.GetChatUsers)

	conversation := chats.Group("/:peerID")
	conversation.Use(middlewares.ConversationMiddleware)
	conversation.Get("/", services.GetMessages)
	conversation.Post("/", services.SendMessage)
	conversation.Post("/read", services.MarkRead)
	conversation.Post("/attachment", services.SendAttachment)
	conversation.Get("/attachment/:attachmentID", services.GetAttachment)
	conversation.Post("/block", services.BlockUser)
	conversation.Post("/unblock", services.UnblockUser)
	conversation.Post("/reset", services.ResetConversation)
}
