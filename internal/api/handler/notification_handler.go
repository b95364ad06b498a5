package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projectlink/projectlink-api/internal/core/ports"
)

// NotificationHandler serves the derived activity feed and notification
// read state of the authenticated user.
type NotificationHandler struct {
	service ports.FeedService
}

func NewNotificationHandler(service ports.FeedService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List handles GET /api/users/notifications.
//
// @Summary      Recent notifications
// @Description  The most recent window of notifications. unreadCount covers the whole feed.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  notificationsResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	page, err := h.service.ListNotifications(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notificationsResponse{
		Notifications: page.Notifications,
		UnreadCount:   page.UnreadCount,
	})
}

// MarkRead handles POST /api/users/notifications/read.
//
// @Summary      Mark notifications read
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      markReadRequest  true  "Notification ids"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /users/notifications/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req markReadRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.MarkRead(c.Request().Context(), userID, req.IDs); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Notifications marked as read"})
}

// MarkAllRead handles POST /api/users/notifications/read-all.
//
// @Summary      Mark every notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Router       /users/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.MarkAllRead(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "All notifications marked as read"})
}

// Activity handles GET /api/users/activity.
//
// @Summary      Activity feed
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  activityResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/activity [get]
func (h *NotificationHandler) Activity(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	feed, err := h.service.BuildFeed(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toActivityResponse(feed))
}
