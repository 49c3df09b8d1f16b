package store

import "auction-sync/internal/domain"

// Action is anything that can be dispatched into the Store. Every action
// belongs to exactly one slice, except SessionCleared which resets them all.
type Action interface {
	Type() string
}

type notificationAction interface {
	Action
	notificationAction()
}

type auctionAction interface {
	Action
	auctionAction()
}

type paymentAction interface {
	Action
	paymentAction()
}

// SessionCleared resets every slice, used on logout.
type SessionCleared struct{}

func (SessionCleared) Type() string { return "session/cleared" }

// ConnectionChanged mirrors the realtime client's status.
type ConnectionChanged struct {
	Status domain.ConnectionStatus
}

func (ConnectionChanged) Type() string { return "connection/changed" }

// Notification slice actions

type NotificationsRequested struct{}
type NotificationsFetched struct{ Items []domain.Notification }
type NotificationsFetchFailed struct{ Err string }
type NotificationPushed struct{ Item domain.Notification }
type NotificationMarkedRead struct{ ID int64 }
type AllNotificationsMarkedRead struct{}
type NotificationDeleted struct{ ID int64 }
type NotificationNewStatusCleared struct{}
type NotificationOperationFailed struct{ Err string }

func (NotificationsRequested) Type() string       { return "notification/requested" }
func (NotificationsFetched) Type() string         { return "notification/fetched" }
func (NotificationsFetchFailed) Type() string     { return "notification/fetchFailed" }
func (NotificationPushed) Type() string           { return "notification/pushed" }
func (NotificationMarkedRead) Type() string       { return "notification/markedRead" }
func (AllNotificationsMarkedRead) Type() string   { return "notification/allMarkedRead" }
func (NotificationDeleted) Type() string          { return "notification/deleted" }
func (NotificationNewStatusCleared) Type() string { return "notification/newStatusCleared" }
func (NotificationOperationFailed) Type() string  { return "notification/operationFailed" }

func (NotificationsRequested) notificationAction()       {}
func (NotificationsFetched) notificationAction()         {}
func (NotificationsFetchFailed) notificationAction()     {}
func (NotificationPushed) notificationAction()           {}
func (NotificationMarkedRead) notificationAction()       {}
func (AllNotificationsMarkedRead) notificationAction()   {}
func (NotificationDeleted) notificationAction()          {}
func (NotificationNewStatusCleared) notificationAction() {}
func (NotificationOperationFailed) notificationAction()  {}

// Auction slice actions

type AuctionsRequested struct{}
type AuctionsFetched struct{ Page domain.Page[domain.Auction] }
type AuctionRequested struct{ ID int64 }
type AuctionFetched struct{ Auction domain.Auction }
type AuctionUpdated struct{ Auction domain.Auction }
type AuctionRemoved struct{ ID int64 }
type AuctionWatched struct{ ID int64 }
type AuctionUnwatched struct{ ID int64 }
type CurrentAuctionCleared struct{}
type BidRequested struct{ AuctionID int64 }
type BidPlaced struct{ Bid domain.Bid }
type AuctionRequestFailed struct{ Err string }
type AuctionErrorCleared struct{}

func (AuctionsRequested) Type() string     { return "auction/listRequested" }
func (AuctionsFetched) Type() string       { return "auction/listFetched" }
func (AuctionRequested) Type() string      { return "auction/requested" }
func (AuctionFetched) Type() string        { return "auction/fetched" }
func (AuctionUpdated) Type() string        { return "auction/updated" }
func (AuctionRemoved) Type() string        { return "auction/removed" }
func (AuctionWatched) Type() string        { return "auction/watched" }
func (AuctionUnwatched) Type() string      { return "auction/unwatched" }
func (CurrentAuctionCleared) Type() string { return "auction/currentCleared" }
func (BidRequested) Type() string          { return "auction/bidRequested" }
func (BidPlaced) Type() string             { return "auction/bidPlaced" }
func (AuctionRequestFailed) Type() string  { return "auction/requestFailed" }
func (AuctionErrorCleared) Type() string   { return "auction/errorCleared" }

func (AuctionsRequested) auctionAction()     {}
func (AuctionsFetched) auctionAction()       {}
func (AuctionRequested) auctionAction()      {}
func (AuctionFetched) auctionAction()        {}
func (AuctionUpdated) auctionAction()        {}
func (AuctionRemoved) auctionAction()        {}
func (AuctionWatched) auctionAction()        {}
func (AuctionUnwatched) auctionAction()      {}
func (CurrentAuctionCleared) auctionAction() {}
func (BidRequested) auctionAction()          {}
func (BidPlaced) auctionAction()             {}
func (AuctionRequestFailed) auctionAction()  {}
func (AuctionErrorCleared) auctionAction()   {}

// Payment slice actions

type PaymentsRequested struct{}
type PaymentsFetched struct{ Items []domain.Payment }
type PaymentFetched struct{ Payment domain.Payment }
type PaymentRequestFailed struct{ Err string }
type PaymentCleared struct{}

func (PaymentsRequested) Type() string    { return "payment/requested" }
func (PaymentsFetched) Type() string      { return "payment/listFetched" }
func (PaymentFetched) Type() string       { return "payment/fetched" }
func (PaymentRequestFailed) Type() string { return "payment/requestFailed" }
func (PaymentCleared) Type() string       { return "payment/cleared" }

func (PaymentsRequested) paymentAction()    {}
func (PaymentsFetched) paymentAction()      {}
func (PaymentFetched) paymentAction()       {}
func (PaymentRequestFailed) paymentAction() {}
func (PaymentCleared) paymentAction()       {}
