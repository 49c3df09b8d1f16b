package services

import (
	"context"
	"time"

	"auction-sync/internal/domain"
	"auction-sync/internal/store"
	"auction-sync/pkg/logger"
)

// FeedNotifier pushes state changes to local presentation clients.
type FeedNotifier interface {
	NotifySession(ctx context.Context, message interface{}) error
	BroadcastToAuction(ctx context.Context, auctionID int64, message interface{}) error
}

// StateChange is one live feed message.
type StateChange struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// StateRelay forwards applied store changes to the live feed and relays
// applied auction snapshots to other agents.
type StateRelay struct {
	feed      FeedNotifier
	publisher domain.StateEventPublisher
	timeout   time.Duration
	log       logger.Logger
}

func NewStateRelay(feed FeedNotifier, publisher domain.StateEventPublisher, log logger.Logger) *StateRelay {
	return &StateRelay{
		feed:      feed,
		publisher: publisher,
		timeout:   2 * time.Second,
		log:       log,
	}
}

// Attach starts relaying st and returns the detach function.
func (r *StateRelay) Attach(st *store.Store) func() {
	return st.Subscribe(r.onAction)
}

// Snapshot is the feed message sent to clients that just joined.
func Snapshot(st *store.Store) StateChange {
	return StateChange{Type: "snapshot", Payload: st.State()}
}

func (r *StateRelay) onAction(action store.Action, state store.State) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if r.feed != nil {
		if err := r.feed.NotifySession(ctx, StateChange{Type: action.Type(), Payload: state}); err != nil {
			r.log.Error("Failed to notify feed", "action", action.Type(), "error", err)
		}
	}

	var id int64
	switch a := action.(type) {
	case store.AuctionUpdated:
		id = a.Auction.ID
	case store.AuctionFetched:
		id = a.Auction.ID
	default:
		return
	}

	// Relay what the store kept, never the raw payload.
	auction, ok := state.Auction.Find(id)
	if !ok {
		return
	}

	if r.feed != nil {
		msg := StateChange{Type: action.Type(), Payload: auction}
		if err := r.feed.BroadcastToAuction(ctx, auction.ID, msg); err != nil {
			r.log.Error("Failed to broadcast auction", "auction_id", auction.ID, "error", err)
		}
	}
	if r.publisher != nil {
		if err := r.publisher.PublishAuctionUpdate(ctx, auction); err != nil {
			r.log.Warn("Failed to relay auction update", "auction_id", auction.ID, "error", err)
		}
	}
}
