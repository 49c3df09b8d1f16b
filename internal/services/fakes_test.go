package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"auction-sync/internal/domain"
)

type fakeAPI struct {
	mu sync.Mutex

	auctions      map[int64]domain.Auction
	notifications []domain.Notification
	payments      []domain.Payment
	err           error

	bids      []domain.BidRequest
	getCalls  int
	readIDs   []int64
	readAll   int
	deleted   []int64
	prefs     []domain.NotificationPreference
	created   []domain.PaymentRequest
	listCalls map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		auctions:  make(map[int64]domain.Auction),
		listCalls: make(map[string]int),
	}
}

func (f *fakeAPI) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeAPI) calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls[name]
}

func (f *fakeAPI) ListAuctions(ctx context.Context, q domain.AuctionQuery) (*domain.Page[domain.Auction], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls["auctions"]++
	if f.err != nil {
		return nil, f.err
	}
	page := &domain.Page[domain.Auction]{TotalPages: 1, Number: q.Page}
	for _, a := range f.auctions {
		page.Content = append(page.Content, a)
	}
	return page, nil
}

func (f *fakeAPI) GetAuction(ctx context.Context, auctionID int64) (*domain.Auction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.auctions[auctionID]
	if !ok {
		return nil, &notFound{}
	}
	return &a, nil
}

func (f *fakeAPI) PlaceBid(ctx context.Context, req domain.BidRequest) (*domain.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.bids = append(f.bids, req)
	return &domain.Bid{ID: int64(len(f.bids)), AuctionID: req.AuctionID, Amount: req.Amount}, nil
}

func (f *fakeAPI) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls["notifications"]++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Notification(nil), f.notifications...), nil
}

func (f *fakeAPI) MarkNotificationRead(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.readIDs = append(f.readIDs, id)
	return nil
}

func (f *fakeAPI) MarkAllNotificationsRead(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.readAll++
	return nil
}

func (f *fakeAPI) DeleteNotification(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) UpdateNotificationPreference(ctx context.Context, pref domain.NotificationPreference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.prefs = append(f.prefs, pref)
	return nil
}

func (f *fakeAPI) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls["payments"]++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Payment(nil), f.payments...), nil
}

func (f *fakeAPI) GetPayment(ctx context.Context, orderCode string) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.payments {
		if p.OrderCode == orderCode {
			return &p, nil
		}
	}
	return nil, &notFound{}
}

func (f *fakeAPI) CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &domain.Payment{OrderCode: "ORD-NEW", AuctionID: req.AuctionID, Status: domain.PaymentPending}, nil
}

type notFound struct{}

func (*notFound) Error() string { return "not found" }

func activeAuction(id int64, price, increment float64) domain.Auction {
	return domain.Auction{
		ID:                  id,
		CurrentPrice:        price,
		MinimumBidIncrement: increment,
		Status:              domain.AuctionActive,
		EndTime:             domain.NewTimestamp(time.Now().Add(time.Hour)),
	}
}

func signedToken(t *testing.T, subject string, expires time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}
