package router

import (
	"tsena/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	SetupConversationRouter(e, authMiddleware)
	SetupNotificationRouter(e, authMiddleware)
	SetupMarketplaceRouter(e, authMiddleware, adminMiddleware)
	SetupHealthRouter(e)
}
