package domain

import (
	"context"
	"time"
)

// Realtime transport interfaces
type MessageHandler func(body []byte)

// BrokerDialer opens one session to the message broker, attaching the
// credential to the handshake.
type BrokerDialer interface {
	Dial(ctx context.Context, credential string) (BrokerSession, error)
}

type BrokerSession interface {
	Subscribe(topic string, handler MessageHandler) (SubscriptionHandle, error)
	// Done is closed when the session is lost or closed.
	Done() <-chan struct{}
	Err() error
	Close() error
}

type SubscriptionHandle interface {
	Unsubscribe() error
}

// EventSink is the narrow write channel the realtime client uses to feed
// parsed events into application state.
type EventSink interface {
	NotificationPushed(n Notification)
	PaymentsChanged()
	AuctionUpdated(a Auction)
	ConnectionChanged(status ConnectionStatus)
}

// Marketplace API interfaces
type AuctionAPI interface {
	ListAuctions(ctx context.Context, q AuctionQuery) (*Page[Auction], error)
	GetAuction(ctx context.Context, auctionID int64) (*Auction, error)
	PlaceBid(ctx context.Context, req BidRequest) (*Bid, error)
}

type NotificationAPI interface {
	ListNotifications(ctx context.Context) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id int64) error
	UpdateNotificationPreference(ctx context.Context, pref NotificationPreference) error
}

type PaymentAPI interface {
	ListPayments(ctx context.Context) ([]Payment, error)
	GetPayment(ctx context.Context, orderCode string) (*Payment, error)
	CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error)
}

type MarketplaceAPI interface {
	AuctionAPI
	NotificationAPI
	PaymentAPI
}

// Notification interfaces
type DesktopNotifier interface {
	Notify(ctx context.Context, title, message string) error
}

// Leader election interface
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}

// Event interfaces
type StateEventPublisher interface {
	PublishAuctionUpdate(ctx context.Context, auction Auction) error
}

type StateEventSubscriber interface {
	SubscribeToAuctionUpdates(ctx context.Context, handler AuctionUpdateHandler) error
}

type AuctionUpdateHandler func(auction *Auction) error

// Repository interfaces
type BidRepository interface {
	SaveBids(ctx context.Context, bids []Bid) (int64, error)
	GetBidHistory(ctx context.Context, auctionID int64) ([]Bid, error)
	LatestBidTime(ctx context.Context, auctionID int64) (time.Time, error)
}

// Live feed interfaces
type FeedConnection interface {
	Send(message []byte) error
	Close() error
	ID() string
}

type FeedBroadcaster interface {
	Broadcast(channel string, message interface{}) error
}
