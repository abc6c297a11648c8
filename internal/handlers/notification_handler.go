package handlers

import (
	"net/http"

	"expensetrack/internal/dto"
	"expensetrack/internal/services"

	"github.com/labstack/echo/v4"
)

// NotificationHandler exposes the transient notification slot over HTTP
type NotificationHandler struct {
	notifications services.NotificationCenterInterface
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications services.NotificationCenterInterface) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// GetNotification returns the notification currently on display, if any
// @Summary Current notification
// @Description Return the transient notification on display; null when the slot is empty
// @Tags Notifications
// @Produce json
// @Success 200 {object} dto.NotificationResponse "Current notification or null"
// @Router /notification [get]
func (h *NotificationHandler) GetNotification(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NotificationResponse{
		Notification: h.notifications.Current(),
	})
}

// DismissNotification closes the current notification immediately
// @Summary Dismiss notification
// @Description Dismiss the current notification before its auto-dismiss deadline
// @Tags Notifications
// @Produce json
// @Success 200 {object} dto.MessageResponse "Notification dismissed"
// @Router /notification [delete]
func (h *NotificationHandler) DismissNotification(c echo.Context) error {
	h.notifications.Close()
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Notification dismissed"})
}
