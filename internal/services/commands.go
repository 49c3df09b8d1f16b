package services

import (
	"context"
	"errors"

	"auction-sync/internal/domain"
	"auction-sync/internal/store"
	"auction-sync/pkg/logger"
)

// Commands are the operations the presentation layer triggers. Each one
// records its pending, fulfilled or rejected outcome in the store.
type Commands struct {
	api       domain.MarketplaceAPI
	store     *store.Store
	validator *BidValidator
	log       logger.Logger

	onUnauthorized func()
}

func NewCommands(api domain.MarketplaceAPI, st *store.Store, validator *BidValidator, log logger.Logger) *Commands {
	return &Commands{
		api:       api,
		store:     st,
		validator: validator,
		log:       log,
	}
}

// SetUnauthorizedHandler registers what happens when the marketplace rejects
// the credential.
func (c *Commands) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

func (c *Commands) checkUnauthorized(err error) {
	if errors.Is(err, domain.ErrUnauthorized) && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

func (c *Commands) FetchAuctions(ctx context.Context, q domain.AuctionQuery) (*domain.Page[domain.Auction], error) {
	c.store.Dispatch(store.AuctionsRequested{})

	page, err := c.api.ListAuctions(ctx, q)
	if err != nil {
		c.log.Error("Failed to fetch auctions", "page", q.Page, "error", err)
		c.store.Dispatch(store.AuctionRequestFailed{Err: err.Error()})
		c.checkUnauthorized(err)
		return nil, err
	}

	c.store.Dispatch(store.AuctionsFetched{Page: *page})
	return page, nil
}

func (c *Commands) FetchAuction(ctx context.Context, auctionID int64) (*domain.Auction, error) {
	c.store.Dispatch(store.AuctionRequested{ID: auctionID})

	auction, err := c.api.GetAuction(ctx, auctionID)
	if err != nil {
		c.log.Error("Failed to fetch auction", "auction_id", auctionID, "error", err)
		c.store.Dispatch(store.AuctionRequestFailed{Err: err.Error()})
		c.checkUnauthorized(err)
		return nil, err
	}

	if !c.store.Dispatch(store.AuctionFetched{Auction: *auction}) {
		c.log.Debug("Fetched auction is older than the stored copy", "auction_id", auctionID, "version", auction.Version)
		if stored, ok := c.store.State().Auction.Find(auctionID); ok {
			return &stored, nil
		}
	}
	return auction, nil
}

// PlaceBid validates the bid against the known auction, loading it first
// when the client has not seen it yet. Rejected bids are never sent.
func (c *Commands) PlaceBid(ctx context.Context, req domain.BidRequest) (*domain.Bid, error) {
	auction, ok := c.knownAuction(req.AuctionID)
	if !ok {
		loaded, err := c.FetchAuction(ctx, req.AuctionID)
		if err != nil {
			return nil, err
		}
		auction = *loaded
	}

	if err := c.validator.ValidateBid(auction, req.Amount); err != nil {
		c.log.Info("Bid rejected locally", "auction_id", req.AuctionID, "amount", req.Amount, "error", err)
		c.store.Dispatch(store.AuctionRequestFailed{Err: err.Error()})
		return nil, err
	}

	c.store.Dispatch(store.BidRequested{AuctionID: req.AuctionID})
	bid, err := c.api.PlaceBid(ctx, req)
	if err != nil {
		c.log.Error("Failed to place bid", "auction_id", req.AuctionID, "amount", req.Amount, "error", err)
		c.store.Dispatch(store.AuctionRequestFailed{Err: err.Error()})
		c.checkUnauthorized(err)
		return nil, err
	}

	c.log.Info("Bid placed", "auction_id", req.AuctionID, "amount", req.Amount, "bid_id", bid.ID)
	c.store.Dispatch(store.BidPlaced{Bid: *bid})
	return bid, nil
}

// knownAuction returns the stored record for auctionID when it is complete
// enough to validate against. A record left partial by a pushed patch has
// no status or increment and forces a refetch.
func (c *Commands) knownAuction(auctionID int64) (domain.Auction, bool) {
	state := c.store.State().Auction
	if state.CurrentAuction != nil && state.CurrentAuction.ID == auctionID {
		return *state.CurrentAuction, complete(*state.CurrentAuction)
	}
	for _, a := range state.Auctions {
		if a.ID == auctionID {
			return a, complete(a)
		}
	}
	return domain.Auction{}, false
}

func complete(a domain.Auction) bool {
	return a.Status != domain.AuctionUnknown && a.MinimumBidIncrement > 0
}

func (c *Commands) FetchNotifications(ctx context.Context) error {
	c.store.Dispatch(store.NotificationsRequested{})

	items, err := c.api.ListNotifications(ctx)
	if err != nil {
		c.log.Error("Failed to fetch notifications", "error", err)
		c.store.Dispatch(store.NotificationsFetchFailed{Err: err.Error()})
		c.checkUnauthorized(err)
		return err
	}

	c.store.Dispatch(store.NotificationsFetched{Items: items})
	return nil
}

func (c *Commands) MarkNotificationRead(ctx context.Context, id int64) error {
	if err := c.api.MarkNotificationRead(ctx, id); err != nil {
		return c.notificationFailed("Failed to mark notification read", err)
	}
	c.store.Dispatch(store.NotificationMarkedRead{ID: id})
	return nil
}

func (c *Commands) MarkAllNotificationsRead(ctx context.Context) error {
	if err := c.api.MarkAllNotificationsRead(ctx); err != nil {
		return c.notificationFailed("Failed to mark all notifications read", err)
	}
	c.store.Dispatch(store.AllNotificationsMarkedRead{})
	return nil
}

func (c *Commands) DeleteNotification(ctx context.Context, id int64) error {
	if err := c.api.DeleteNotification(ctx, id); err != nil {
		return c.notificationFailed("Failed to delete notification", err)
	}
	c.store.Dispatch(store.NotificationDeleted{ID: id})
	return nil
}

func (c *Commands) UpdateNotificationPreference(ctx context.Context, pref domain.NotificationPreference) error {
	if err := c.api.UpdateNotificationPreference(ctx, pref); err != nil {
		return c.notificationFailed("Failed to update notification preference", err)
	}
	return nil
}

// ClearNewStatus drops the newly-arrived marker; it never touches the server.
func (c *Commands) ClearNewStatus() {
	c.store.Dispatch(store.NotificationNewStatusCleared{})
}

func (c *Commands) notificationFailed(msg string, err error) error {
	c.log.Error(msg, "error", err)
	c.store.Dispatch(store.NotificationOperationFailed{Err: err.Error()})
	c.checkUnauthorized(err)
	return err
}

func (c *Commands) FetchPayments(ctx context.Context) error {
	c.store.Dispatch(store.PaymentsRequested{})

	payments, err := c.api.ListPayments(ctx)
	if err != nil {
		return c.paymentFailed("Failed to fetch payments", err)
	}

	c.store.Dispatch(store.PaymentsFetched{Items: payments})
	return nil
}

func (c *Commands) FetchPayment(ctx context.Context, orderCode string) (*domain.Payment, error) {
	c.store.Dispatch(store.PaymentsRequested{})

	payment, err := c.api.GetPayment(ctx, orderCode)
	if err != nil {
		return nil, c.paymentFailed("Failed to fetch payment", err)
	}

	c.store.Dispatch(store.PaymentFetched{Payment: *payment})
	return payment, nil
}

func (c *Commands) CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error) {
	c.store.Dispatch(store.PaymentsRequested{})

	payment, err := c.api.CreatePayment(ctx, req)
	if err != nil {
		return nil, c.paymentFailed("Failed to create payment", err)
	}

	c.log.Info("Payment created", "auction_id", req.AuctionID, "order_code", payment.OrderCode)
	c.store.Dispatch(store.PaymentFetched{Payment: *payment})
	return payment, nil
}

func (c *Commands) paymentFailed(msg string, err error) error {
	c.log.Error(msg, "error", err)
	c.store.Dispatch(store.PaymentRequestFailed{Err: err.Error()})
	c.checkUnauthorized(err)
	return err
}
