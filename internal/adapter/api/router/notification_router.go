package router

import (
	"tsena/internal/adapter/api/handler"
	"tsena/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupNotificationRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	notificationHandler := handler.GetNotificationHandler()

	notifications := e.Group("/v1/notifications")
	notifications.Use(authMiddleware.Authenticate)

	notifications.GET("", notificationHandler.ListNotifications)    // GET /v1/notifications - Paginated inbox
	notifications.PUT("", notificationHandler.MarkRead)             // PUT /v1/notifications - Mark ids or all read
	notifications.GET("/unread", notificationHandler.GetUnreadCount) // GET /v1/notifications/unread - Unread count
}
