package redis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-sync/internal/domain"
)

func TestParseAuctionUpdate(t *testing.T) {
	payload, err := json.Marshal(AuctionUpdate{
		InstanceID: "agent-1",
		Auction: domain.Auction{
			ID:           42,
			CurrentPrice: 150000,
			Status:       domain.AuctionActive,
			Bids:         []domain.Bid{{ID: 7, AuctionID: 42, Amount: 150000}},
		},
	})
	require.NoError(t, err)

	update, err := ParseAuctionUpdate(string(payload))
	require.NoError(t, err)
	assert.Equal(t, "agent-1", update.InstanceID)
	assert.Equal(t, int64(42), update.Auction.ID)
	assert.Equal(t, domain.AuctionActive, update.Auction.Status)
	require.Len(t, update.Auction.Bids, 1)
	assert.Equal(t, int64(7), update.Auction.Bids[0].ID)
}

func TestParseAuctionUpdateRejectsBadPayloads(t *testing.T) {
	_, err := ParseAuctionUpdate("42:BID:7:150000.00:1715940000")
	assert.Error(t, err)

	_, err = ParseAuctionUpdate(`{"instanceId":"a","auction":{}}`)
	assert.Error(t, err)
}
