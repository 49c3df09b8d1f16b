package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"auction-sync/internal/domain"
)

var _ domain.StateEventPublisher = (*EventPublisherImpl)(nil)

// AuctionUpdate is the relayed message: the applied snapshot plus the agent
// that observed it.
type AuctionUpdate struct {
	InstanceID string         `json:"instanceId"`
	Auction    domain.Auction `json:"auction"`
}

type EventPublisherImpl struct {
	client     *redis.Client
	channel    string
	instanceID string
}

func NewEventPublisher(client *redis.Client, channel, instanceID string) *EventPublisherImpl {
	return &EventPublisherImpl{
		client:     client,
		channel:    channel,
		instanceID: instanceID,
	}
}

func (r *EventPublisherImpl) PublishAuctionUpdate(ctx context.Context, auction domain.Auction) error {
	payload, err := json.Marshal(AuctionUpdate{InstanceID: r.instanceID, Auction: auction})
	if err != nil {
		return fmt.Errorf("encode auction update: %w", err)
	}

	return r.client.Publish(ctx, r.channel, payload).Err()
}
