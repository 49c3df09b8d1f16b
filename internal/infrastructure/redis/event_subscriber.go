package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"auction-sync/internal/domain"
	"auction-sync/pkg/logger"
)

var _ domain.StateEventSubscriber = (*RedisEventSubscriber)(nil)

type RedisEventSubscriber struct {
	client  *redis.Client
	channel string
	log     logger.Logger
}

func NewRedisEventSubscriber(client *redis.Client, channel string, log logger.Logger) *RedisEventSubscriber {
	return &RedisEventSubscriber{
		client:  client,
		channel: channel,
		log:     log,
	}
}

// SubscribeToAuctionUpdates blocks, handing every relayed snapshot to
// handler until ctx ends.
func (r *RedisEventSubscriber) SubscribeToAuctionUpdates(ctx context.Context, handler domain.AuctionUpdateHandler) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	r.log.Info("Subscribed to auction updates", "channel", r.channel)

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("subscription to %s closed", r.channel)
			}
			update, err := ParseAuctionUpdate(msg.Payload)
			if err != nil {
				r.log.Error("Failed to parse auction update", "payload", msg.Payload, "error", err)
				continue
			}

			if err := handler(&update.Auction); err != nil {
				r.log.Error("Failed to handle auction update", "auction_id", update.Auction.ID, "error", err)
			}

		case <-ctx.Done():
			r.log.Info("Auction update subscriber stopped")
			return ctx.Err()
		}
	}
}

func ParseAuctionUpdate(payload string) (*AuctionUpdate, error) {
	var update AuctionUpdate
	if err := json.Unmarshal([]byte(payload), &update); err != nil {
		return nil, err
	}
	if update.Auction.ID == 0 {
		return nil, fmt.Errorf("auction update without id")
	}
	return &update, nil
}
