package rest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"auction-sync/internal/domain"
)

var _ domain.MarketplaceAPI = (*Client)(nil)

func (c *Client) ListAuctions(ctx context.Context, q domain.AuctionQuery) (*domain.Page[domain.Auction], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	if q.Size > 0 {
		params.Set("size", strconv.Itoa(q.Size))
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Keyword != "" {
		params.Set("keyword", q.Keyword)
	}

	var page domain.Page[domain.Auction]
	if err := c.get(ctx, "/auctions?"+params.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetAuction(ctx context.Context, auctionID int64) (*domain.Auction, error) {
	var auction domain.Auction
	if err := c.get(ctx, fmt.Sprintf("/auctions/%d", auctionID), &auction); err != nil {
		return nil, err
	}
	return &auction, nil
}

func (c *Client) PlaceBid(ctx context.Context, req domain.BidRequest) (*domain.Bid, error) {
	var bid domain.Bid
	if err := c.post(ctx, "/bids", req, &bid); err != nil {
		return nil, err
	}
	return &bid, nil
}

func (c *Client) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	var list contentOrArray[domain.Notification]
	if err := c.get(ctx, "/notifications", &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.post(ctx, fmt.Sprintf("/notifications/%d/read", id), nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.post(ctx, "/notifications/read-all", nil, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/notifications/%d", id))
}

func (c *Client) UpdateNotificationPreference(ctx context.Context, pref domain.NotificationPreference) error {
	return c.put(ctx, "/notifications/preferences", pref, nil)
}

func (c *Client) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	var list contentOrArray[domain.Payment]
	if err := c.get(ctx, "/payment/list", &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (c *Client) GetPayment(ctx context.Context, orderCode string) (*domain.Payment, error) {
	var payment domain.Payment
	if err := c.get(ctx, "/payment/status/"+url.PathEscape(orderCode), &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Client) CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error) {
	var payment domain.Payment
	if err := c.post(ctx, "/payment/create", req, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
