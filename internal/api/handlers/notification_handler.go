package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"auction-sync/internal/domain"
)

// ListNotifications polls the marketplace and answers with the merged list.
func (h *Handler) ListNotifications(c echo.Context) error {
	if err := h.commands.FetchNotifications(c.Request().Context()); err != nil {
		return h.errorResponse(c, err)
	}
	state := h.store.State().Notification
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":       state.Items,
		"unreadCount": state.UnreadCount(),
		"lastUpdated": state.LastUpdated,
	})
}

func (h *Handler) MarkNotificationRead(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.commands.MarkNotificationRead(c.Request().Context(), id); err != nil {
		return h.errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkAllNotificationsRead(c echo.Context) error {
	if err := h.commands.MarkAllNotificationsRead(c.Request().Context()); err != nil {
		return h.errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteNotification(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.commands.DeleteNotification(c.Request().Context(), id); err != nil {
		return h.errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ClearNewStatus(c echo.Context) error {
	h.commands.ClearNewStatus()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateNotificationPreference(c echo.Context) error {
	var pref domain.NotificationPreference
	if err := c.Bind(&pref); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if pref.Type == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "type is required"})
	}
	if err := h.commands.UpdateNotificationPreference(c.Request().Context(), pref); err != nil {
		return h.errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
