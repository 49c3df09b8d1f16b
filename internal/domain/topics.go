package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	AuctionFeedTopic       = "/topic/auctions"
	NotificationQueueTopic = "/user/queue/notifications"
	PaymentQueueTopic      = "/user/queue/payments"
)

// TopicKind selects which state sink a topic's events are routed to.
type TopicKind int

const (
	TopicUnknown TopicKind = iota
	TopicAuction
	TopicAuctionFeed
	TopicNotifications
	TopicPayments
)

func (k TopicKind) String() string {
	switch k {
	case TopicAuction:
		return "auction"
	case TopicAuctionFeed:
		return "auction_feed"
	case TopicNotifications:
		return "notifications"
	case TopicPayments:
		return "payments"
	default:
		return "unknown"
	}
}

func AuctionTopic(auctionID int64) string {
	return fmt.Sprintf("%s/%d", AuctionFeedTopic, auctionID)
}

// ClassifyTopic returns the sink kind of topic and, for per-auction topics,
// the auction id encoded in it.
func ClassifyTopic(topic string) (TopicKind, int64) {
	switch topic {
	case NotificationQueueTopic:
		return TopicNotifications, 0
	case PaymentQueueTopic:
		return TopicPayments, 0
	case AuctionFeedTopic:
		return TopicAuctionFeed, 0
	}

	rest, ok := strings.CutPrefix(topic, AuctionFeedTopic+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return TopicUnknown, 0
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return TopicUnknown, 0
	}
	return TopicAuction, id
}
