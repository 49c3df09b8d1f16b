package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-sync/internal/domain"
	"auction-sync/pkg/logger"
)

type Options struct {
	ReconnectDelay time.Duration
	MaxAttempts    int
}

func DefaultOptions() Options {
	return Options{
		ReconnectDelay: 5 * time.Second,
		MaxAttempts:    5,
	}
}

// subscription tracks one topic. A nil handle means the topic survived a
// connection loss and is waiting to be resubscribed.
type subscription struct {
	handle domain.SubscriptionHandle
}

// Client owns the single broker connection and the topic table.
type Client struct {
	dialer domain.BrokerDialer
	sink   domain.EventSink
	opts   Options
	logger logger.Logger

	mu         sync.Mutex
	state      domain.ConnectionState
	attempts   int
	exhausted  bool
	lastErr    string
	credential string
	session    domain.BrokerSession
	subs       map[string]*subscription

	generation int
	cancel     context.CancelFunc
	loopDone   chan struct{}

	connected       chan struct{}
	connectedClosed bool
}

func NewClient(dialer domain.BrokerDialer, sink domain.EventSink, opts Options, log logger.Logger) *Client {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultOptions().ReconnectDelay
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultOptions().MaxAttempts
	}
	return &Client{
		dialer:    dialer,
		sink:      sink,
		opts:      opts,
		logger:    log,
		subs:      make(map[string]*subscription),
		connected: make(chan struct{}),
	}
}

// Connect starts the connection loop. It is a no-op while connecting or
// connected.
func (c *Client) Connect(ctx context.Context, credential string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if state := c.state; state != domain.Disconnected {
		c.mu.Unlock()
		c.logger.Debug("Connect ignored, already active", "state", state.String())
		return nil
	}
	c.credential = credential
	c.attempts = 0
	c.exhausted = false
	c.lastErr = ""
	c.startLocked()
	status := c.statusLocked()
	c.mu.Unlock()

	c.sink.ConnectionChanged(status)
	return nil
}

// Reconnect restarts a loop that gave up after the retry ceiling. The topic
// table is kept so every topic is resubscribed on the next handshake.
func (c *Client) Reconnect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.credential == "" {
		c.mu.Unlock()
		return domain.ErrNoSession
	}
	if c.state != domain.Disconnected {
		c.mu.Unlock()
		return nil
	}
	c.attempts = 0
	c.exhausted = false
	c.lastErr = ""
	c.startLocked()
	status := c.statusLocked()
	c.mu.Unlock()

	c.logger.Info("Manual reconnect requested")
	c.sink.ConnectionChanged(status)
	return nil
}

// Disconnect tears down the transport and forgets every topic.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	done := c.loopDone
	c.loopDone = nil
	session := c.session
	c.session = nil
	c.subs = make(map[string]*subscription)
	c.state = domain.Disconnected
	c.attempts = 0
	c.exhausted = false
	c.lastErr = ""
	c.credential = ""
	c.resetConnectedLocked()
	status := c.statusLocked()
	c.mu.Unlock()

	if session != nil {
		if err := session.Close(); err != nil {
			c.logger.Warn("Failed to close broker session", "error", err)
		}
	}
	if done != nil {
		<-done
	}

	c.logger.Info("Realtime client disconnected")
	c.sink.ConnectionChanged(status)
}

// Subscribe registers a topic. A topic that already has an active handle is
// left alone. Without a connection nothing is recorded and ErrNotConnected is
// returned after a logged warning.
func (c *Client) Subscribe(topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sub, ok := c.subs[topic]; ok {
		if sub.handle != nil {
			c.logger.Info("Already subscribed to topic", "topic", topic)
			return nil
		}
		if c.state != domain.Connected {
			c.logger.Debug("Topic already pending resubscription", "topic", topic)
			return nil
		}
	}

	if c.state != domain.Connected || c.session == nil {
		c.logger.Warn("Cannot subscribe, realtime client not connected", "topic", topic)
		return domain.ErrNotConnected
	}

	handle, err := c.session.Subscribe(topic, c.handlerFor(topic))
	if err != nil {
		c.logger.Error("Failed to subscribe", "topic", topic, "error", err)
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	c.subs[topic] = &subscription{handle: handle}
	c.logger.Info("Subscribed to topic", "topic", topic)
	return nil
}

// Unsubscribe drops a topic; unknown topics are ignored.
func (c *Client) Unsubscribe(topic string) {
	c.mu.Lock()
	sub, ok := c.subs[topic]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.subs, topic)
	c.mu.Unlock()

	if sub.handle != nil {
		if err := sub.handle.Unsubscribe(); err != nil {
			c.logger.Warn("Failed to unsubscribe", "topic", topic, "error", err)
		}
	}
	c.logger.Info("Unsubscribed from topic", "topic", topic)
}

// AwaitConnected blocks until the client is connected or ctx ends.
func (c *Client) AwaitConnected(ctx context.Context) error {
	c.mu.Lock()
	ch := c.connected
	c.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) Status() domain.ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Topics lists every topic in the table, active or pending.
func (c *Client) Topics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	topics := make([]string, 0, len(c.subs))
	for topic := range c.subs {
		topics = append(topics, topic)
	}
	return topics
}

func (c *Client) statusLocked() domain.ConnectionStatus {
	return domain.ConnectionStatus{
		State:     c.state,
		Attempts:  c.attempts,
		Exhausted: c.exhausted,
		LastError: c.lastErr,
	}
}

func (c *Client) startLocked() {
	c.generation++
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.loopDone = make(chan struct{})
	c.state = domain.Connecting
	go c.run(ctx, c.generation, c.credential, c.loopDone)
}

func (c *Client) resetConnectedLocked() {
	if c.connectedClosed {
		c.connected = make(chan struct{})
		c.connectedClosed = false
	}
}

func (c *Client) run(ctx context.Context, gen int, credential string, done chan struct{}) {
	defer close(done)

	for {
		session, err := c.dialer.Dial(ctx, credential)
		if ctx.Err() != nil {
			if session != nil {
				session.Close()
			}
			return
		}

		if err != nil {
			c.logger.Warn("Broker connection failed", "error", err)
			if !c.recordFailure(gen, err) {
				return
			}
		} else {
			if !c.onConnected(gen, session) {
				session.Close()
				return
			}

			select {
			case <-session.Done():
				lostErr := session.Err()
				if lostErr == nil {
					lostErr = errors.New("connection closed")
				}
				c.logger.Warn("Broker connection lost", "error", lostErr)
				if !c.onLost(gen, session, lostErr) {
					return
				}
			case <-ctx.Done():
				return
			}
		}

		timer := time.NewTimer(c.opts.ReconnectDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// onConnected installs a fresh session and resubscribes every pending topic
// exactly once.
func (c *Client) onConnected(gen int, session domain.BrokerSession) bool {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return false
	}

	c.session = session
	c.state = domain.Connected
	c.attempts = 0
	c.lastErr = ""

	resubscribed := 0
	for topic, sub := range c.subs {
		if sub.handle != nil {
			continue
		}
		handle, err := session.Subscribe(topic, c.handlerFor(topic))
		if err != nil {
			c.logger.Error("Failed to resubscribe", "topic", topic, "error", err)
			continue
		}
		sub.handle = handle
		resubscribed++
	}

	if !c.connectedClosed {
		close(c.connected)
		c.connectedClosed = true
	}
	status := c.statusLocked()
	c.mu.Unlock()

	c.logger.Info("Realtime client connected", "resubscribed", resubscribed)
	c.sink.ConnectionChanged(status)
	return true
}

// onLost invalidates every handle but keeps the topics, then counts the
// loss toward the retry ceiling.
func (c *Client) onLost(gen int, session domain.BrokerSession, err error) bool {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return false
	}
	for _, sub := range c.subs {
		sub.handle = nil
	}
	c.session = nil
	c.resetConnectedLocked()
	c.mu.Unlock()

	if closeErr := session.Close(); closeErr != nil {
		c.logger.Debug("Closing lost session", "error", closeErr)
	}
	return c.recordFailure(gen, err)
}

// recordFailure bumps the attempt counter. Once the ceiling is reached the
// loop stops and the status is marked exhausted.
func (c *Client) recordFailure(gen int, err error) bool {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return false
	}
	c.attempts++
	c.lastErr = err.Error()
	keepGoing := c.attempts < c.opts.MaxAttempts
	if keepGoing {
		c.state = domain.Connecting
	} else {
		c.state = domain.Disconnected
		c.exhausted = true
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		c.loopDone = nil
	}
	status := c.statusLocked()
	c.mu.Unlock()

	if !keepGoing {
		c.logger.Error("Giving up on broker connection", "attempts", status.Attempts, "error", err)
	}
	c.sink.ConnectionChanged(status)
	return keepGoing
}

func (c *Client) handlerFor(topic string) domain.MessageHandler {
	kind, auctionID := domain.ClassifyTopic(topic)

	return func(body []byte) {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("Panic while handling message", "topic", topic, "panic", r)
			}
		}()

		switch kind {
		case domain.TopicNotifications:
			var n domain.Notification
			if err := json.Unmarshal(body, &n); err != nil {
				c.logger.Error("Failed to parse notification", "topic", topic, "error", err)
				return
			}
			c.sink.NotificationPushed(n)

		case domain.TopicPayments:
			var event map[string]json.RawMessage
			if err := json.Unmarshal(body, &event); err != nil {
				c.logger.Error("Failed to parse payment event", "topic", topic, "error", err)
				return
			}
			c.sink.PaymentsChanged()

		case domain.TopicAuction, domain.TopicAuctionFeed:
			var a domain.Auction
			if err := json.Unmarshal(body, &a); err != nil {
				c.logger.Error("Failed to parse auction update", "topic", topic, "error", err)
				return
			}
			if kind == domain.TopicAuction {
				if a.ID == 0 {
					a.ID = auctionID
				}
				if a.ID != auctionID {
					c.logger.Warn("Auction update does not match topic", "topic", topic, "auctionId", a.ID)
					return
				}
			}
			if a.ID == 0 {
				c.logger.Warn("Auction update without id", "topic", topic)
				return
			}
			c.sink.AuctionUpdated(a)

		default:
			c.logger.Warn("Message on unrecognised topic", "topic", topic)
		}
	}
}
