package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/socialcore/backend/internal/apperrors"
	"github.com/anonto42/socialcore/backend/internal/models"
	"github.com/anonto42/socialcore/backend/internal/service"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread/count", h.GetUnreadCount)
	g.POST("/notifications/read", h.MarkAsRead)
}

// GetNotifications lists the caller's notifications, newest first.
// ?limit= defaults to 50 and is capped at 200.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			return apperrors.Invalid("invalid limit")
		}
	}
	notifications, err := h.notifications.List(c.Request().Context(), currentUserID, limit)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"notifications": notifications})
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.UnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks the given ids, or every unread notification when the body
// or its ids field is absent. An explicit empty list marks nothing.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.MarkNotificationsReadRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return apperrors.Invalid("invalid request body")
		}
	}
	updated, err := h.notifications.MarkRead(c.Request().Context(), currentUserID, req.IDs)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"updated": updated})
}
