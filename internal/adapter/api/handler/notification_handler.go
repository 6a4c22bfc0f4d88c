package handler

import (
	"github.com/labstack/echo/v4"

	"tsena/internal/usecase"
	"tsena/pkg/response"
	"tsena/pkg/utils"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

type markReadRequest struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c)

	notifications, total, err := h.notificationUseCase.ListNotifications(c.Request().Context(), userID, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, notifications, total, params.Page, params.PageSize)
}

// MarkRead marks either the given notification ids or, with all=true,
// every unread notification for the caller.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	var req markReadRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if req.All {
		if err := h.notificationUseCase.MarkAllRead(c.Request().Context(), userID); err != nil {
			return response.Error(c, err)
		}
	} else {
		if err := h.notificationUseCase.MarkManyRead(c.Request().Context(), userID, req.IDs); err != nil {
			return response.Error(c, err)
		}
	}

	return response.Success(c, map[string]string{"status": "read"})
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID := c.Get("uid").(string)

	count, err := h.notificationUseCase.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int64{"unread": count})
}
