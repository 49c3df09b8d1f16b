package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"auction-sync/internal/domain"
	"auction-sync/internal/infrastructure/rest"
	"auction-sync/internal/services"
	"auction-sync/internal/store"
	"auction-sync/pkg/logger"
)

// SessionService is the session lifecycle as the HTTP surface drives it.
type SessionService interface {
	Login(ctx context.Context, token string) (*services.UserClaims, error)
	Logout(ctx context.Context)
	Reconnect(ctx context.Context) error
	User() *services.UserClaims
	WatchAuction(ctx context.Context, auctionID int64) (*domain.Auction, error)
	UnwatchAuction(auctionID int64)
}

// Handler exposes the synchronized state and the user commands to local
// presentation clients.
type Handler struct {
	session  SessionService
	commands *services.Commands
	store    *store.Store
	feed     http.Handler
	log      logger.Logger
}

func NewHandler(session SessionService, commands *services.Commands, st *store.Store, feed http.Handler, log logger.Logger) *Handler {
	return &Handler{
		session:  session,
		commands: commands,
		store:    st,
		feed:     feed,
		log:      log,
	}
}

// NewServer builds the echo instance with every route registered.
func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","method":"${method}","uri":"${uri}","status":${status},"error":"${error}","latency_human":"${latency_human}"}` + "\n",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
	}))
	e.Use(middleware.Recover())

	h.Register(e)
	return e
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	if h.feed != nil {
		e.Any("/ws/feed", echo.WrapHandler(h.feed))
		e.Any("/ws/feed/*", echo.WrapHandler(h.feed))
	}

	api := e.Group("/api/v1")
	api.GET("/state", h.GetState)

	api.POST("/session/login", h.Login)
	api.POST("/session/logout", h.Logout)
	api.POST("/session/reconnect", h.Reconnect)

	api.GET("/auctions", h.ListAuctions)
	api.GET("/auctions/:id", h.GetAuction)
	api.DELETE("/auctions/:id/watch", h.UnwatchAuction)
	api.POST("/auctions/:id/bids", h.PlaceBid)

	api.GET("/notifications", h.ListNotifications)
	api.POST("/notifications/read-all", h.MarkAllNotificationsRead)
	api.POST("/notifications/clear-new", h.ClearNewStatus)
	api.PUT("/notifications/preferences", h.UpdateNotificationPreference)
	api.POST("/notifications/:id/read", h.MarkNotificationRead)
	api.DELETE("/notifications/:id", h.DeleteNotification)

	api.GET("/payments", h.ListPayments)
	api.POST("/payments", h.CreatePayment)
	api.GET("/payments/:orderCode", h.GetPayment)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"service":    "auction-sync",
		"timestamp":  time.Now().Format(time.RFC3339),
		"connection": h.store.State().Connection,
	})
}

// GetState returns the whole synchronized state with derived counters.
func (h *Handler) GetState(c echo.Context) error {
	state := h.store.State()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"auction":                  state.Auction,
		"notification":             state.Notification,
		"payment":                  state.Payment,
		"connection":               state.Connection,
		"unreadNotificationsCount": state.Notification.UnreadCount(),
		"unreadPaymentsCount":      state.Payment.UnreadCount(),
	})
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// errorResponse maps a command failure to the status the local client sees.
func (h *Handler) errorResponse(c echo.Context, err error) error {
	status := http.StatusBadGateway

	var apiErr *rest.APIError
	switch {
	case errors.Is(err, domain.ErrBidTooLow), errors.Is(err, domain.ErrAuctionNotActive):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrCredentialExpired),
		errors.Is(err, domain.ErrNoSession):
		status = http.StatusUnauthorized
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		status = apiErr.StatusCode
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", "path", c.Path(), "error", err)
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
