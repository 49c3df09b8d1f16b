package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTopic(t *testing.T) {
	kind, id := ClassifyTopic(AuctionTopic(42))
	assert.Equal(t, TopicAuction, kind)
	assert.Equal(t, int64(42), id)

	kind, _ = ClassifyTopic("/topic/auctions")
	assert.Equal(t, TopicAuctionFeed, kind)

	kind, _ = ClassifyTopic("/user/queue/notifications")
	assert.Equal(t, TopicNotifications, kind)

	kind, _ = ClassifyTopic("/user/queue/payments")
	assert.Equal(t, TopicPayments, kind)

	for _, topic := range []string{"/topic/auctions/abc", "/topic/auctions/", "/topic/auctions/1/bids", "/topic/other", "/topic/auctions/-3"} {
		kind, _ = ClassifyTopic(topic)
		assert.Equal(t, TopicUnknown, kind, topic)
	}
}
