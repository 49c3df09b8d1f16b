package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-sync/internal/domain"
	"auction-sync/internal/store"
	"auction-sync/pkg/logger"
)

func newTestCommands() (*Commands, *fakeAPI, *store.Store) {
	api := newFakeAPI()
	st := store.New(logger.NewNop())
	return NewCommands(api, st, NewBidValidator(), logger.NewNop()), api, st
}

func TestPlaceBidBelowMinimumNeverReachesNetwork(t *testing.T) {
	c, api, st := newTestCommands()
	api.auctions[42] = activeAuction(42, 100000, 5000)
	_, err := c.FetchAuction(context.Background(), 42)
	require.NoError(t, err)

	_, err = c.PlaceBid(context.Background(), domain.BidRequest{AuctionID: 42, Amount: 104999})

	assert.ErrorIs(t, err, domain.ErrBidTooLow)
	assert.Empty(t, api.bids)
	assert.NotEmpty(t, st.State().Auction.Error)
}

func TestPlaceBidOnEndedAuctionIsRejected(t *testing.T) {
	c, api, _ := newTestCommands()
	ended := activeAuction(7, 10, 1)
	ended.Status = domain.AuctionEnded
	api.auctions[7] = ended

	_, err := c.PlaceBid(context.Background(), domain.BidRequest{AuctionID: 7, Amount: 100})

	assert.ErrorIs(t, err, domain.ErrAuctionNotActive)
	assert.Empty(t, api.bids)
}

func TestPlaceBidLoadsUnknownAuctionFirst(t *testing.T) {
	c, api, st := newTestCommands()
	api.auctions[42] = activeAuction(42, 100000, 5000)

	bid, err := c.PlaceBid(context.Background(), domain.BidRequest{AuctionID: 42, Amount: 105000})

	require.NoError(t, err)
	assert.Equal(t, 105000.0, bid.Amount)
	assert.Equal(t, 1, api.getCalls)
	require.Len(t, api.bids, 1)
	assert.False(t, st.State().Auction.Loading)
	assert.Empty(t, st.State().Auction.Error)
}

func TestPlaceBidAfterPartialPushRefetches(t *testing.T) {
	c, api, st := newTestCommands()
	api.auctions[42] = activeAuction(42, 100000, 5000)
	_, err := c.FetchAuction(context.Background(), 42)
	require.NoError(t, err)

	var patch domain.Auction
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"currentPrice":150000,"bids":[]}`), &patch))
	require.True(t, st.Dispatch(store.AuctionUpdated{Auction: patch}))
	require.Equal(t, domain.AuctionUnknown, st.State().Auction.CurrentAuction.Status)

	api.mu.Lock()
	api.auctions[42] = activeAuction(42, 150000, 5000)
	api.mu.Unlock()

	bid, err := c.PlaceBid(context.Background(), domain.BidRequest{AuctionID: 42, Amount: 200000})

	require.NoError(t, err)
	assert.Equal(t, 200000.0, bid.Amount)
	require.Len(t, api.bids, 1)
	assert.Equal(t, 2, api.getCalls)
	current := st.State().Auction.CurrentAuction
	require.NotNil(t, current)
	assert.Equal(t, domain.AuctionActive, current.Status)
	assert.Equal(t, 5000.0, current.MinimumBidIncrement)
}

func TestFetchFailureSurfacesError(t *testing.T) {
	c, api, st := newTestCommands()
	api.notifications = []domain.Notification{{ID: 1, Message: "a"}}
	require.NoError(t, c.FetchNotifications(context.Background()))

	api.setErr(&notFound{})
	assert.Error(t, c.FetchNotifications(context.Background()))

	state := st.State().Notification
	assert.Equal(t, "not found", state.Error)
	assert.Len(t, state.Items, 1)
}

func TestUnauthorizedTriggersHandler(t *testing.T) {
	c, api, _ := newTestCommands()
	called := 0
	c.SetUnauthorizedHandler(func() { called++ })
	api.setErr(domain.ErrUnauthorized)

	assert.ErrorIs(t, c.FetchPayments(context.Background()), domain.ErrUnauthorized)
	assert.Equal(t, 1, called)
}

func TestNotificationCommandsUpdateStore(t *testing.T) {
	c, api, st := newTestCommands()
	api.notifications = []domain.Notification{{ID: 1}, {ID: 2}, {ID: 3}}
	require.NoError(t, c.FetchNotifications(context.Background()))

	require.NoError(t, c.MarkNotificationRead(context.Background(), 1))
	require.NoError(t, c.DeleteNotification(context.Background(), 2))
	assert.Equal(t, 1, st.State().Notification.UnreadCount())

	require.NoError(t, c.MarkAllNotificationsRead(context.Background()))
	assert.Equal(t, 0, st.State().Notification.UnreadCount())
	assert.Len(t, st.State().Notification.Items, 2)

	assert.Equal(t, []int64{1}, api.readIDs)
	assert.Equal(t, []int64{2}, api.deleted)
	assert.Equal(t, 1, api.readAll)
}

func TestFailedMarkReadLeavesList(t *testing.T) {
	c, api, st := newTestCommands()
	api.notifications = []domain.Notification{{ID: 1}}
	require.NoError(t, c.FetchNotifications(context.Background()))
	api.setErr(&notFound{})

	assert.Error(t, c.MarkNotificationRead(context.Background(), 1))
	assert.False(t, st.State().Notification.Items[0].Read)
	assert.Equal(t, "not found", st.State().Notification.Error)
}

func TestPaymentCommands(t *testing.T) {
	c, api, st := newTestCommands()
	api.payments = []domain.Payment{
		{OrderCode: "A", Status: domain.PaymentPending},
		{OrderCode: "B", Status: domain.PaymentPending, Notified: true},
	}

	require.NoError(t, c.FetchPayments(context.Background()))
	assert.Equal(t, 1, st.State().Payment.UnreadCount())

	p, err := c.FetchPayment(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "A", st.State().Payment.Payment.OrderCode)
	assert.Equal(t, "A", p.OrderCode)

	created, err := c.CreatePayment(context.Background(), domain.PaymentRequest{AuctionID: 42, PaymentMethod: "VNPAY"})
	require.NoError(t, err)
	assert.Equal(t, "ORD-NEW", created.OrderCode)
	assert.Equal(t, "ORD-NEW", st.State().Payment.Payment.OrderCode)
}

func TestValidator(t *testing.T) {
	v := NewBidValidator()
	a := activeAuction(1, 100, 10)

	assert.Equal(t, 110.0, v.GetMinimumBid(a))
	assert.NoError(t, v.ValidateBid(a, 110))
	assert.ErrorIs(t, v.ValidateBid(a, 109.99), domain.ErrBidTooLow)

	pending := a
	pending.Status = domain.AuctionPending
	assert.ErrorIs(t, v.ValidateBid(pending, 500), domain.ErrAuctionNotActive)

	unknown := domain.Auction{ID: 1, CurrentPrice: 150}
	assert.NoError(t, v.ValidateBid(unknown, 150))
	assert.ErrorIs(t, v.ValidateBid(unknown, 149), domain.ErrBidTooLow)
}
