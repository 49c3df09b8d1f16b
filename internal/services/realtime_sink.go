package services

import (
	"auction-sync/internal/domain"
	"auction-sync/internal/store"
	"auction-sync/pkg/logger"
)

var _ domain.EventSink = (*RealtimeSink)(nil)

// PaymentRefresher re-polls payments when the broker signals a change.
type PaymentRefresher interface {
	RefreshPayments()
}

// NotificationMirror receives every notification push that reached the
// store.
type NotificationMirror interface {
	Mirror(n domain.Notification)
}

// RealtimeSink feeds parsed broker events into the store through the same
// merges the polls use.
type RealtimeSink struct {
	store    *store.Store
	payments PaymentRefresher
	mirror   NotificationMirror
	log      logger.Logger
}

func NewRealtimeSink(st *store.Store, payments PaymentRefresher, mirror NotificationMirror, log logger.Logger) *RealtimeSink {
	return &RealtimeSink{
		store:    st,
		payments: payments,
		mirror:   mirror,
		log:      log,
	}
}

func (s *RealtimeSink) NotificationPushed(n domain.Notification) {
	if !s.store.Dispatch(store.NotificationPushed{Item: n}) {
		s.log.Debug("Stale notification push ignored", "notification_id", n.ID)
		return
	}
	if s.mirror != nil {
		s.mirror.Mirror(n)
	}
}

func (s *RealtimeSink) PaymentsChanged() {
	if s.payments != nil {
		s.payments.RefreshPayments()
	}
}

func (s *RealtimeSink) AuctionUpdated(a domain.Auction) {
	if !s.store.Dispatch(store.AuctionUpdated{Auction: a}) {
		s.log.Debug("Auction update not applied", "auction_id", a.ID, "version", a.Version)
	}
}

func (s *RealtimeSink) ConnectionChanged(status domain.ConnectionStatus) {
	s.store.Dispatch(store.ConnectionChanged{Status: status})
}
