package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"auction-sync/internal/domain"
)

func (h *Handler) ListPayments(c echo.Context) error {
	if err := h.commands.FetchPayments(c.Request().Context()); err != nil {
		return h.errorResponse(c, err)
	}
	state := h.store.State().Payment
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":       state.Payments,
		"unreadCount": state.UnreadCount(),
		"lastUpdated": state.LastUpdated,
	})
}

func (h *Handler) GetPayment(c echo.Context) error {
	orderCode := strings.TrimSpace(c.Param("orderCode"))
	if orderCode == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "orderCode is required"})
	}

	payment, err := h.commands.FetchPayment(c.Request().Context(), orderCode)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

func (h *Handler) CreatePayment(c echo.Context) error {
	var req domain.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.AuctionID <= 0 || req.PaymentMethod == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "auctionId and paymentMethod are required"})
	}

	payment, err := h.commands.CreatePayment(c.Request().Context(), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, payment)
}
