package domain

import (
	"encoding/json"
	"strings"
	"time"
)

type Auction struct {
	ID                  int64         `json:"id"`
	Title               string        `json:"title"`
	Description         string        `json:"description,omitempty"`
	Category            string        `json:"category,omitempty"`
	StartingPrice       float64       `json:"startingPrice"`
	CurrentPrice        float64       `json:"currentPrice"`
	MinimumBidIncrement float64       `json:"minimumBidIncrement"`
	StartTime           Timestamp     `json:"startTime"`
	EndTime             Timestamp     `json:"endTime"`
	Status              AuctionStatus `json:"status"`
	Bids                []Bid         `json:"bids"`
	BidCount            int           `json:"bidCount"`
	SellerID            int64         `json:"sellerId,omitempty"`
	WinnerID            *int64        `json:"winnerId,omitempty"`
	Version             int64         `json:"version,omitempty"`
	UpdatedAt           Timestamp     `json:"updatedAt"`
}

// MinimumNextBid is the lowest amount the next bid may carry.
func (a Auction) MinimumNextBid() float64 {
	return a.CurrentPrice + a.MinimumBidIncrement
}

// IsEnded reports whether the end time has passed at now. An auction without
// an end time never ends by the clock.
func (a Auction) IsEnded(now time.Time) bool {
	if a.EndTime.IsZero() {
		return false
	}
	return !a.EndTime.After(now)
}

// Clone returns a copy that shares no slices with a.
func (a Auction) Clone() Auction {
	c := a
	if a.Bids != nil {
		c.Bids = append([]Bid(nil), a.Bids...)
	}
	if a.WinnerID != nil {
		w := *a.WinnerID
		c.WinnerID = &w
	}
	return c
}

type Bid struct {
	ID        int64     `json:"id"`
	AuctionID int64     `json:"auctionId"`
	BidderID  int64     `json:"bidderId"`
	Username  string    `json:"username,omitempty"`
	Amount    float64   `json:"amount"`
	BidTime   Timestamp `json:"bidTime"`
}

type AuctionStatus int

const (
	AuctionUnknown AuctionStatus = iota
	AuctionPending
	AuctionActive
	AuctionEnded
	AuctionCancelled
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionPending:
		return "pending"
	case AuctionActive:
		return "active"
	case AuctionEnded:
		return "ended"
	case AuctionCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further client-visible transition can leave s.
func (s AuctionStatus) Terminal() bool {
	return s == AuctionEnded || s == AuctionCancelled
}

// CanTransition reports whether the client may observe a move from one status
// to another. Staying in the same status is always allowed; unknown statuses
// are never rejected because the server may know values the client does not.
func CanTransition(from, to AuctionStatus) bool {
	if from == to || from == AuctionUnknown || to == AuctionUnknown {
		return true
	}
	switch from {
	case AuctionPending:
		return to == AuctionActive || to == AuctionCancelled
	case AuctionActive:
		return to == AuctionEnded || to == AuctionCancelled
	default:
		return false
	}
}

func ParseAuctionStatus(s string) AuctionStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING":
		return AuctionPending
	case "ACTIVE":
		return AuctionActive
	case "ENDED":
		return AuctionEnded
	case "CANCELLED":
		return AuctionCancelled
	default:
		return AuctionUnknown
	}
}

func (s AuctionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToUpper(s.String()))
}

func (s *AuctionStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseAuctionStatus(raw)
	return nil
}

type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title,omitempty"`
	Message   string    `json:"message"`
	Type      string    `json:"type,omitempty"`
	Link      string    `json:"link,omitempty"`
	CreatedAt Timestamp `json:"createdAt"`
	Read      bool      `json:"read"`
	Version   int64     `json:"version,omitempty"`

	// IsNew marks the most recent unseen arrival. Client-side only.
	IsNew bool `json:"isNew"`
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentExpired   PaymentStatus = "EXPIRED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

type Payment struct {
	OrderCode     string        `json:"orderCode"`
	AuctionID     int64         `json:"auctionId,omitempty"`
	Amount        float64       `json:"amount"`
	PaymentMethod string        `json:"paymentMethod,omitempty"`
	Status        PaymentStatus `json:"status"`
	Notified      bool          `json:"notified"`
	QRCodeURL     string        `json:"qrCodeUrl,omitempty"`
	PaymentURL    string        `json:"paymentUrl,omitempty"`
	CreatedAt     Timestamp     `json:"createdAt"`
	UpdatedAt     Timestamp     `json:"updatedAt"`
	ExpiresAt     Timestamp     `json:"expiresAt"`
}

// Unread reports whether the payment still needs the user's attention.
func (p Payment) Unread() bool {
	return p.Status == PaymentPending && !p.Notified
}

// Page is the paginated list envelope returned by the marketplace API.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
	Number        int `json:"number"`
	Size          int `json:"size"`
}

type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

func (s ConnectionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ConnectionStatus describes the realtime link as the presentation layer sees it.
type ConnectionStatus struct {
	State     ConnectionState `json:"state"`
	Attempts  int             `json:"attempts"`
	Exhausted bool            `json:"exhausted"`
	LastError string          `json:"lastError,omitempty"`
}

type BidRequest struct {
	AuctionID int64   `json:"auctionId"`
	Amount    float64 `json:"amount"`
}

type PaymentRequest struct {
	AuctionID     int64  `json:"auctionId"`
	PaymentMethod string `json:"paymentMethod"`
}

type NotificationPreference struct {
	Type         string `json:"type"`
	EmailEnabled bool   `json:"emailEnabled"`
	InAppEnabled bool   `json:"inAppEnabled"`
	PushEnabled  bool   `json:"pushEnabled"`
}

// AuctionQuery filters the paged auction listing.
type AuctionQuery struct {
	Page     int
	Size     int
	Status   string
	Category string
	Keyword  string
}
