package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"auction-sync/internal/domain"
	"auction-sync/pkg/logger"
)

// ElectionFactory builds the leadership election for one user.
type ElectionFactory func(userID string) domain.LeaderElection

// DesktopMirror shows pushed notifications on the desktop. When several
// agents run for the same user only the leader shows them.
type DesktopMirror struct {
	notifier   domain.DesktopNotifier
	elections  ElectionFactory
	instanceID string
	timeout    time.Duration
	log        logger.Logger

	mu       sync.Mutex
	election domain.LeaderElection
	joined   bool
}

func NewDesktopMirror(notifier domain.DesktopNotifier, elections ElectionFactory, instanceID string, log logger.Logger) *DesktopMirror {
	return &DesktopMirror{
		notifier:   notifier,
		elections:  elections,
		instanceID: instanceID,
		timeout:    5 * time.Second,
		log:        log,
	}
}

// Join starts competing for the user's desktop leadership.
func (m *DesktopMirror) Join(ctx context.Context, userID string) {
	m.mu.Lock()
	m.joined = true
	if m.elections != nil {
		m.election = m.elections(userID)
	}
	election := m.election
	m.mu.Unlock()

	if election == nil {
		return
	}
	leader, err := election.BecomeLeader(ctx, m.instanceID)
	if err != nil {
		m.log.Warn("Desktop leadership unavailable", "user_id", userID, "error", err)
		return
	}
	m.log.Info("Joined desktop leadership", "user_id", userID, "leader", leader)
}

// Leave gives up leadership and forgets the permission decision.
func (m *DesktopMirror) Leave(ctx context.Context) {
	m.mu.Lock()
	election := m.election
	m.election = nil
	m.joined = false
	m.mu.Unlock()

	if election != nil {
		if err := election.ReleaseLeadership(ctx, m.instanceID); err != nil {
			m.log.Warn("Failed to release desktop leadership", "error", err)
		}
	}
	if r, ok := m.notifier.(interface{ Reset() }); ok {
		r.Reset()
	}
}

// Mirror shows n when this agent leads. It returns immediately.
func (m *DesktopMirror) Mirror(n domain.Notification) {
	go m.mirror(n)
}

func (m *DesktopMirror) mirror(n domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	if !m.isLeader(ctx) {
		return
	}

	title := n.Title
	if title == "" {
		title = "New notification"
	}
	if err := m.notifier.Notify(ctx, title, n.Message); err != nil {
		m.log.Debug("Desktop notification skipped", "notification_id", n.ID, "error", err)
	}
}

// isLeader checks leadership and campaigns again when the key is free, so a
// surviving agent takes over from one that left.
func (m *DesktopMirror) isLeader(ctx context.Context) bool {
	m.mu.Lock()
	joined, election := m.joined, m.election
	m.mu.Unlock()

	if !joined {
		return false
	}
	if election == nil {
		return true
	}

	leader, err := election.IsLeader(ctx, m.instanceID)
	if err == nil && !leader {
		leader, err = election.BecomeLeader(ctx, m.instanceID)
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			m.log.Warn("Desktop leadership check failed", "error", err)
		}
		return false
	}
	return leader
}
