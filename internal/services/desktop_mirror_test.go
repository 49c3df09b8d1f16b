package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"auction-sync/internal/domain"
	"auction-sync/pkg/logger"
)

type shownNotification struct {
	title   string
	message string
}

type fakeDesktop struct {
	mu     sync.Mutex
	shown  []shownNotification
	resets int
}

func (f *fakeDesktop) Notify(ctx context.Context, title, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, shownNotification{title: title, message: message})
	return nil
}

func (f *fakeDesktop) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

func (f *fakeDesktop) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.shown)
}

// sharedElection is an in-memory leadership key shared by several agents.
type sharedElection struct {
	mu     sync.Mutex
	holder string
}

func (e *sharedElection) BecomeLeader(ctx context.Context, instanceID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.holder == "" {
		e.holder = instanceID
	}
	return e.holder == instanceID, nil
}

func (e *sharedElection) IsLeader(ctx context.Context, instanceID string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.holder == instanceID, nil
}

func (e *sharedElection) ReleaseLeadership(ctx context.Context, instanceID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.holder == instanceID {
		e.holder = ""
	}
	return nil
}

func TestOnlyLeaderShowsDesktopNotification(t *testing.T) {
	election := &sharedElection{}
	factory := func(string) domain.LeaderElection { return election }

	leaderDesktop, followerDesktop := &fakeDesktop{}, &fakeDesktop{}
	leader := NewDesktopMirror(leaderDesktop, factory, "agent-a", logger.NewNop())
	follower := NewDesktopMirror(followerDesktop, factory, "agent-b", logger.NewNop())

	leader.Join(context.Background(), "user-7")
	follower.Join(context.Background(), "user-7")

	n := domain.Notification{ID: 1, Message: "You were outbid"}
	leader.Mirror(n)
	follower.Mirror(n)

	assert.Eventually(t, func() bool { return leaderDesktop.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, followerDesktop.count())
	assert.Equal(t, "New notification", leaderDesktop.shown[0].title)

	leader.Leave(context.Background())
	assert.Equal(t, 1, leaderDesktop.resets)

	follower.Mirror(domain.Notification{ID: 2, Title: "Payment", Message: "due"})
	assert.Eventually(t, func() bool { return followerDesktop.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestMirrorWithoutElectionAlwaysShows(t *testing.T) {
	desktop := &fakeDesktop{}
	m := NewDesktopMirror(desktop, nil, "agent-a", logger.NewNop())

	m.Mirror(domain.Notification{ID: 1, Message: "before join"})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, desktop.count())

	m.Join(context.Background(), "user-7")
	m.Mirror(domain.Notification{ID: 2, Message: "after join"})
	assert.Eventually(t, func() bool { return desktop.count() == 1 }, time.Second, 5*time.Millisecond)
}
