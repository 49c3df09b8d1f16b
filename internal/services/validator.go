package services

import (
	"fmt"
	"time"

	"auction-sync/internal/domain"
)

// BidValidator checks a bid against the auction as the client currently
// sees it, so hopeless bids never reach the network.
type BidValidator struct {
	now func() time.Time
}

func NewBidValidator() *BidValidator {
	return &BidValidator{now: time.Now}
}

// ValidateBid rejects bids the server would refuse. An unknown status is
// left for the server to decide.
func (v *BidValidator) ValidateBid(auction domain.Auction, amount float64) error {
	closed := auction.Status != domain.AuctionActive && auction.Status != domain.AuctionUnknown
	if closed || auction.IsEnded(v.now()) {
		return fmt.Errorf("auction %d is %s: %w", auction.ID, auction.Status, domain.ErrAuctionNotActive)
	}
	if !v.ValidateIncrement(auction, amount) {
		return fmt.Errorf("bid %.2f below minimum %.2f: %w", amount, v.GetMinimumBid(auction), domain.ErrBidTooLow)
	}
	return nil
}

func (v *BidValidator) ValidateIncrement(auction domain.Auction, amount float64) bool {
	return amount >= v.GetMinimumBid(auction)
}

func (v *BidValidator) GetMinimumBid(auction domain.Auction) float64 {
	return auction.MinimumNextBid()
}
