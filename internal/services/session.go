package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"auction-sync/internal/domain"
	"auction-sync/internal/store"
	"auction-sync/pkg/logger"
)

// RealtimeClient is the broker client as the session drives it.
type RealtimeClient interface {
	Connect(ctx context.Context, credential string) error
	Reconnect(ctx context.Context) error
	Disconnect()
	Subscribe(topic string) error
	Unsubscribe(topic string)
	AwaitConnected(ctx context.Context) error
}

type TokenHolder interface {
	SetToken(token string)
}

type Poller interface {
	Start(ctx context.Context) error
	Stop()
}

// UserClaims is what the agent reads from the session credential. The
// signature is the marketplace's to check; the agent only needs identity
// and expiry.
type UserClaims struct {
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

func ParseCredential(token string, now time.Time) (*UserClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse credential: %w", err)
	}

	user := &UserClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		user.ExpiresAt = claims.ExpiresAt.Time
		if !user.ExpiresAt.After(now) {
			return nil, domain.ErrCredentialExpired
		}
	}
	if user.Subject == "" {
		user.Subject = "anonymous"
	}
	return user, nil
}

// userTopics are subscribed for every session once the broker is reachable.
var userTopics = []string{
	domain.NotificationQueueTopic,
	domain.PaymentQueueTopic,
	domain.AuctionFeedTopic,
}

// Session ties the lifetime of the realtime link, the pollers and the
// desktop leadership to one signed-in user.
type Session struct {
	client   RealtimeClient
	tokens   TokenHolder
	commands *Commands
	poller   Poller
	mirror   *DesktopMirror
	store    *store.Store
	log      logger.Logger
	now      func() time.Time

	mu     sync.Mutex
	user   *UserClaims
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSession(client RealtimeClient, tokens TokenHolder, commands *Commands, poller Poller,
	mirror *DesktopMirror, st *store.Store, log logger.Logger) *Session {
	s := &Session{
		client:   client,
		tokens:   tokens,
		commands: commands,
		poller:   poller,
		mirror:   mirror,
		store:    st,
		log:      log,
		now:      time.Now,
	}
	commands.SetUnauthorizedHandler(s.handleUnauthorized)
	return s
}

// Login validates the credential, opens the realtime link and starts the
// pollers. A previous session is logged out first.
func (s *Session) Login(ctx context.Context, token string) (*UserClaims, error) {
	user, err := ParseCredential(token, s.now())
	if err != nil {
		return nil, err
	}

	if s.User() != nil {
		s.Logout(ctx)
	}

	s.tokens.SetToken(token)
	if err := s.client.Connect(ctx, token); err != nil {
		s.tokens.SetToken("")
		return nil, err
	}

	bg, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.user = user
	s.ctx = bg
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.subscribeWhenConnected(bg, userTopics...)
	}()

	if err := s.poller.Start(bg); err != nil {
		s.log.Error("Failed to start poller", "error", err)
	}
	if s.mirror != nil {
		s.mirror.Join(ctx, user.Subject)
	}

	s.log.Info("Session started", "user", user.Subject)
	return user, nil
}

// Logout tears the session down and clears every state slice.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	user := s.user
	cancel := s.cancel
	s.user = nil
	s.ctx = nil
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.poller.Stop()
	s.client.Disconnect()
	if s.mirror != nil {
		s.mirror.Leave(ctx)
	}
	s.tokens.SetToken("")
	s.store.Dispatch(store.SessionCleared{})

	if user != nil {
		s.log.Info("Session ended", "user", user.Subject)
	}
}

func (s *Session) User() *UserClaims {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) Reconnect(ctx context.Context) error {
	if s.User() == nil {
		return domain.ErrNoSession
	}
	return s.client.Reconnect(ctx)
}

// WatchAuction loads an auction and follows its topic, dropping the topic of
// the auction watched before it. A subscription made before the link is up
// is retried once it connects.
func (s *Session) WatchAuction(ctx context.Context, auctionID int64) (*domain.Auction, error) {
	if s.User() == nil {
		return nil, domain.ErrNoSession
	}
	if prev := s.store.State().Auction.WatchedID; prev != 0 && prev != auctionID {
		s.client.Unsubscribe(domain.AuctionTopic(prev))
	}
	s.store.Dispatch(store.AuctionWatched{ID: auctionID})

	topic := domain.AuctionTopic(auctionID)
	if err := s.client.Subscribe(topic); errors.Is(err, domain.ErrNotConnected) {
		s.mu.Lock()
		bg := s.ctx
		if bg == nil {
			s.mu.Unlock()
			return nil, domain.ErrNoSession
		}
		s.wg.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.wg.Done()
			s.subscribeWhenConnected(bg, topic)
		}()
	}

	return s.commands.FetchAuction(ctx, auctionID)
}

func (s *Session) UnwatchAuction(auctionID int64) {
	s.client.Unsubscribe(domain.AuctionTopic(auctionID))
	s.store.Dispatch(store.AuctionUnwatched{ID: auctionID})
}

func (s *Session) subscribeWhenConnected(ctx context.Context, topics ...string) {
	if err := s.client.AwaitConnected(ctx); err != nil {
		return
	}
	for _, topic := range topics {
		if err := s.client.Subscribe(topic); err != nil {
			s.log.Warn("Deferred subscription failed", "topic", topic, "error", err)
		}
	}
}

func (s *Session) handleUnauthorized() {
	if s.User() == nil {
		return
	}
	s.log.Warn("Credential rejected by marketplace, logging out")
	go s.Logout(context.Background())
}
