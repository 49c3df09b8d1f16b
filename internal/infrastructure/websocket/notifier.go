package websocket

import (
	"context"
	"fmt"

	"auction-sync/internal/domain"
)

// SessionChannel carries every state change of the signed-in session.
const SessionChannel = "session"

func AuctionChannel(auctionID int64) string {
	return fmt.Sprintf("auction:%d", auctionID)
}

type FeedNotifier struct {
	broadcaster domain.FeedBroadcaster
}

func NewFeedNotifier(broadcaster domain.FeedBroadcaster) *FeedNotifier {
	return &FeedNotifier{broadcaster: broadcaster}
}

func (n *FeedNotifier) NotifySession(ctx context.Context, message interface{}) error {
	return n.broadcaster.Broadcast(SessionChannel, message)
}

func (n *FeedNotifier) BroadcastToAuction(ctx context.Context, auctionID int64, message interface{}) error {
	return n.broadcaster.Broadcast(AuctionChannel(auctionID), message)
}
