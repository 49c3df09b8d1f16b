package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"auction-sync/internal/domain"
)

type PlaceBidRequest struct {
	Amount float64 `json:"amount"`
}

func (h *Handler) ListAuctions(c echo.Context) error {
	q := domain.AuctionQuery{
		Status:   c.QueryParam("status"),
		Category: c.QueryParam("category"),
		Keyword:  c.QueryParam("keyword"),
	}
	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid page"})
		}
		q.Page = page
	}
	if v := c.QueryParam("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid size"})
		}
		q.Size = size
	}

	page, err := h.commands.FetchAuctions(c.Request().Context(), q)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// GetAuction loads the auction and keeps it live for this session.
func (h *Handler) GetAuction(c echo.Context) error {
	auctionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	auction, err := h.session.WatchAuction(c.Request().Context(), auctionID)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, auction)
}

func (h *Handler) UnwatchAuction(c echo.Context) error {
	auctionID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	h.session.UnwatchAuction(auctionID)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) PlaceBid(c echo.Context) error {
	auctionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req PlaceBidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Bid amount must be positive"})
	}

	bid, err := h.commands.PlaceBid(c.Request().Context(), domain.BidRequest{AuctionID: auctionID, Amount: req.Amount})
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, bid)
}
