package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-sync/pkg/logger"
)

type countingTarget struct {
	mu            sync.Mutex
	notifications int
	payments      int
}

func (c *countingTarget) FetchNotifications(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications++
	return nil
}

func (c *countingTarget) FetchPayments(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payments++
	return nil
}

func (c *countingTarget) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notifications, c.payments
}

func TestPollerRunsImmediatelyOnStart(t *testing.T) {
	target := &countingTarget{}
	p := NewCronPoller(target, time.Hour, time.Hour, logger.NewNop())

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	assert.Eventually(t, func() bool {
		n, pay := target.counts()
		return n == 1 && pay == 1
	}, time.Second, 5*time.Millisecond)
}

func TestPollerRefreshOnlyWhileRunning(t *testing.T) {
	target := &countingTarget{}
	p := NewCronPoller(target, time.Hour, time.Hour, logger.NewNop())

	p.RefreshPayments()
	time.Sleep(20 * time.Millisecond)
	_, pay := target.counts()
	assert.Equal(t, 0, pay)

	require.NoError(t, p.Start(context.Background()))
	assert.Eventually(t, func() bool {
		_, pay := target.counts()
		return pay == 1
	}, time.Second, 5*time.Millisecond)

	// a refresh racing the first poll is skipped, so keep asking
	assert.Eventually(t, func() bool {
		p.RefreshPayments()
		_, pay := target.counts()
		return pay >= 2
	}, time.Second, 5*time.Millisecond)

	p.Stop()
	p.RefreshNotifications()
	time.Sleep(20 * time.Millisecond)
	n, _ := target.counts()
	assert.Equal(t, 1, n)
}

func TestPollerStartIsIdempotent(t *testing.T) {
	target := &countingTarget{}
	p := NewCronPoller(target, time.Hour, time.Hour, logger.NewNop())

	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	time.Sleep(30 * time.Millisecond)
	n, pay := target.counts()
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, pay)
}
