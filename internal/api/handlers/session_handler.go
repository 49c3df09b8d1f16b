package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type LoginRequest struct {
	Token string `json:"token"`
}

// Login accepts the bearer token either in the body or in the
// Authorization header.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer "))
	}
	if token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "token is required"})
	}

	user, err := h.session.Login(c.Request().Context(), token)
	if err != nil {
		h.log.Warn("Login rejected", "remote_addr", c.RealIP(), "error", err)
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) Logout(c echo.Context) error {
	h.session.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Reconnect restarts the realtime link after it gave up retrying.
func (h *Handler) Reconnect(c echo.Context) error {
	if err := h.session.Reconnect(c.Request().Context()); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusAccepted, h.store.State().Connection)
}
