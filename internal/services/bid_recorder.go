package services

import (
	"context"
	"time"

	"auction-sync/internal/domain"
	"auction-sync/pkg/logger"
)

// BidRecorder persists the bids carried by relayed auction snapshots.
type BidRecorder struct {
	repo    domain.BidRepository
	timeout time.Duration
	log     logger.Logger
}

func NewBidRecorder(repo domain.BidRepository, log logger.Logger) *BidRecorder {
	return &BidRecorder{
		repo:    repo,
		timeout: 5 * time.Second,
		log:     log,
	}
}

// HandleAuctionUpdate matches domain.AuctionUpdateHandler.
func (r *BidRecorder) HandleAuctionUpdate(auction *domain.Auction) error {
	if len(auction.Bids) == 0 {
		return nil
	}

	bids := make([]domain.Bid, 0, len(auction.Bids))
	for _, bid := range auction.Bids {
		if bid.ID == 0 {
			continue
		}
		if bid.AuctionID == 0 {
			bid.AuctionID = auction.ID
		}
		bids = append(bids, bid)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	inserted, err := r.repo.SaveBids(ctx, bids)
	if err != nil {
		return err
	}
	if inserted > 0 {
		r.log.Info("Recorded bids", "auction_id", auction.ID, "new_bids", inserted, "current_price", auction.CurrentPrice)
	}
	return nil
}
