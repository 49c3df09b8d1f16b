package store

import (
	"auction-sync/internal/domain"
)

type AuctionState struct {
	Auctions       []domain.Auction `json:"auctions"`
	CurrentAuction *domain.Auction  `json:"currentAuction"`
	WatchedID      int64            `json:"watchedId,omitempty"`
	TotalPages     int              `json:"totalPages"`
	CurrentPage    int              `json:"currentPage"`
	Loading        bool             `json:"loading"`
	Error          string           `json:"error,omitempty"`
}

// Find returns the stored record for id, preferring the current auction over
// its list entry.
func (s AuctionState) Find(id int64) (domain.Auction, bool) {
	if s.CurrentAuction != nil && s.CurrentAuction.ID == id {
		return s.CurrentAuction.Clone(), true
	}
	for _, a := range s.Auctions {
		if a.ID == id {
			return a.Clone(), true
		}
	}
	return domain.Auction{}, false
}

func reduceAuction(s AuctionState, action auctionAction) (AuctionState, bool) {
	switch a := action.(type) {
	case AuctionsRequested, AuctionRequested, BidRequested:
		s.Loading = true
		s.Error = ""
		return s, true
	case AuctionsFetched:
		s.Auctions = make([]domain.Auction, len(a.Page.Content))
		for i, item := range a.Page.Content {
			s.Auctions[i] = item.Clone()
		}
		s.TotalPages = a.Page.TotalPages
		s.CurrentPage = a.Page.Number
		s.Loading = false
		return s, true
	case AuctionFetched:
		s.Loading = false
		return applyAuction(s, a.Auction, true)
	case AuctionUpdated:
		return applyAuction(s, a.Auction, false)
	case AuctionRemoved:
		items := make([]domain.Auction, 0, len(s.Auctions))
		for _, item := range s.Auctions {
			if item.ID != a.ID {
				items = append(items, item)
			}
		}
		removed := len(items) != len(s.Auctions)
		s.Auctions = items
		if s.CurrentAuction != nil && s.CurrentAuction.ID == a.ID {
			s.CurrentAuction = nil
			removed = true
		}
		return s, removed
	case AuctionWatched:
		s.WatchedID = a.ID
		return s, true
	case AuctionUnwatched:
		if s.WatchedID != a.ID {
			return s, false
		}
		s.WatchedID = 0
		return s, true
	case CurrentAuctionCleared:
		s.CurrentAuction = nil
		return s, true
	case BidPlaced:
		s.Loading = false
		s.Error = ""
		return s, true
	case AuctionRequestFailed:
		s.Loading = false
		s.Error = a.Err
		return s, true
	case AuctionErrorCleared:
		s.Error = ""
		return s, true
	default:
		return s, false
	}
}

// applyAuction is the single merge used by both fetched and pushed auction
// snapshots. The current record is replaced when it holds the same id, or
// when nothing is shown yet and the id is the watched one; a fetch always
// takes the current slot. The matching list entry is replaced in place and a
// miss leaves the list alone.
func applyAuction(s AuctionState, incoming domain.Auction, fetched bool) (AuctionState, bool) {
	applied := false

	switch {
	case s.CurrentAuction != nil && s.CurrentAuction.ID == incoming.ID:
		if acceptAuction(*s.CurrentAuction, incoming) {
			c := incoming.Clone()
			s.CurrentAuction = &c
			applied = true
		}
	case fetched || (s.CurrentAuction == nil && s.WatchedID != 0 && s.WatchedID == incoming.ID):
		c := incoming.Clone()
		s.CurrentAuction = &c
		applied = true
	}

	for i, item := range s.Auctions {
		if item.ID != incoming.ID {
			continue
		}
		if acceptAuction(item, incoming) {
			items := append([]domain.Auction(nil), s.Auctions...)
			items[i] = incoming.Clone()
			s.Auctions = items
			applied = true
		}
		break
	}

	return s, applied
}

// acceptAuction is last-write-wins guarded by version and by the status
// lifecycle: a lower version or a move out of a terminal status is stale.
func acceptAuction(stored, incoming domain.Auction) bool {
	if isStaleVersion(stored.Version, incoming.Version) {
		return false
	}
	return domain.CanTransition(stored.Status, incoming.Status)
}
