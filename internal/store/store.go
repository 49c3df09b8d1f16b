package store

import (
	"sync"
	"time"

	"auction-sync/internal/domain"
	"auction-sync/pkg/logger"
)

// State is the whole application state. Slices held in a State are never
// mutated after publication; reducers always build new ones.
type State struct {
	Auction      AuctionState            `json:"auction"`
	Notification NotificationState       `json:"notification"`
	Payment      PaymentState            `json:"payment"`
	Connection   domain.ConnectionStatus `json:"connection"`

	// Seq counts applied actions.
	Seq uint64 `json:"seq"`
}

// Listener observes every applied action together with the resulting state.
// Listeners run outside the state lock, so they may read State, but a
// dispatch from a listener must happen on another goroutine.
type Listener func(action Action, state State)

type Store struct {
	dispatchMu sync.Mutex

	mu    sync.RWMutex
	state State

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int

	now    func() time.Time
	logger logger.Logger
}

type Option func(*Store)

// WithClock overrides the clock used for lastUpdated stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(log logger.Logger, opts ...Option) *Store {
	s := &Store{
		listeners: make(map[int]Listener),
		now:       time.Now,
		logger:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies action and reports whether it was applied. The reduced
// state is committed either way so bookkeeping such as clearing Loading
// sticks; listeners are only told about applied actions.
//
// Dispatches are serialised end to end: listeners see states in the order
// they were committed and must not dispatch synchronously.
func (s *Store) Dispatch(action Action) bool {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	next, applied := reduce(s.state, action, s.now())
	if applied {
		next.Seq++
	}
	s.state = next
	s.mu.Unlock()

	if !applied {
		s.logger.Debug("Action not applied", "action", action.Type())
		return false
	}

	s.listenersMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		l(action, next)
	}
	return true
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func reduce(s State, action Action, now time.Time) (State, bool) {
	switch a := action.(type) {
	case SessionCleared:
		return State{Connection: s.Connection, Seq: s.Seq}, true
	case ConnectionChanged:
		if s.Connection == a.Status {
			return s, false
		}
		s.Connection = a.Status
		return s, true
	case notificationAction:
		next, ok := reduceNotification(s.Notification, a, now)
		s.Notification = next
		return s, ok
	case auctionAction:
		next, ok := reduceAuction(s.Auction, a)
		s.Auction = next
		return s, ok
	case paymentAction:
		next, ok := reducePayment(s.Payment, a, now)
		s.Payment = next
		return s, ok
	default:
		return s, false
	}
}
