package domain

import "errors"

var (
	ErrNotConnected      = errors.New("realtime client not connected")
	ErrCredentialExpired = errors.New("credential expired")
	ErrNoSession         = errors.New("no active session")
	ErrUnauthorized      = errors.New("marketplace rejected credential")
	ErrBidTooLow         = errors.New("bid below minimum next bid")
	ErrAuctionNotActive  = errors.New("auction not accepting bids")
)
