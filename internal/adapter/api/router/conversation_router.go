package router

import (
	"tsena/internal/adapter/api/handler"
	"tsena/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupConversationRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	conversationHandler := handler.GetConversationHandler()

	conversations := e.Group("/v1/conversations")
	conversations.Use(authMiddleware.Authenticate)

	conversations.POST("", conversationHandler.StartConversation)        // POST /v1/conversations - Get-or-create for a listing
	conversations.GET("", conversationHandler.GetUserConversations)      // GET /v1/conversations - List with preview + unread
	conversations.GET("/unread", conversationHandler.GetUnreadMessageCount) // GET /v1/conversations/unread - Total unread messages

	conversations.GET("/:id/messages", conversationHandler.GetConversationMessages) // GET /v1/conversations/:id/messages - Ordered history
	conversations.POST("/:id/messages", conversationHandler.SendMessage)            // POST /v1/conversations/:id/messages - Append message
	conversations.PUT("/:id/read", conversationHandler.MarkConversationRead)        // PUT /v1/conversations/:id/read - Mark incoming read
}
