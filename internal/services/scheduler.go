package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"auction-sync/pkg/logger"
)

// PollTarget is the part of Commands the poller drives.
type PollTarget interface {
	FetchNotifications(ctx context.Context) error
	FetchPayments(ctx context.Context) error
}

// CronPoller refreshes notifications and payments on fixed intervals as a
// backstop for missed pushes. Intervals never back off.
type CronPoller struct {
	target                PollTarget
	notificationsInterval time.Duration
	paymentsInterval      time.Duration
	log                   logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	ctx     context.Context
	running bool

	notificationsBusy atomic.Bool
	paymentsBusy      atomic.Bool
}

func NewCronPoller(target PollTarget, notificationsInterval, paymentsInterval time.Duration, log logger.Logger) *CronPoller {
	return &CronPoller{
		target:                target,
		notificationsInterval: notificationsInterval,
		paymentsInterval:      paymentsInterval,
		log:                   log,
	}
}

// Start schedules both polls and runs each once right away.
func (p *CronPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}
	p.log.Info("Starting poller",
		"notifications_interval", p.notificationsInterval.String(),
		"payments_interval", p.paymentsInterval.String())

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", p.notificationsInterval), func() {
		p.pollNotifications(ctx)
	}); err != nil {
		return err
	}
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", p.paymentsInterval), func() {
		p.pollPayments(ctx)
	}); err != nil {
		return err
	}

	p.cron = c
	p.ctx = ctx
	p.running = true
	c.Start()

	go p.pollNotifications(ctx)
	go p.pollPayments(ctx)
	return nil
}

// Stop unschedules the polls and waits for a running one to finish.
func (p *CronPoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	c := p.cron
	p.cron = nil
	p.ctx = nil
	p.running = false
	p.mu.Unlock()

	p.log.Info("Stopping poller")
	<-c.Stop().Done()
}

// RefreshPayments polls payments now, e.g. after a payment push.
func (p *CronPoller) RefreshPayments() {
	if ctx, ok := p.activeContext(); ok {
		go p.pollPayments(ctx)
	}
}

func (p *CronPoller) RefreshNotifications() {
	if ctx, ok := p.activeContext(); ok {
		go p.pollNotifications(ctx)
	}
}

func (p *CronPoller) activeContext() (context.Context, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctx, p.running
}

func (p *CronPoller) pollNotifications(ctx context.Context) {
	if !p.notificationsBusy.CompareAndSwap(false, true) {
		return
	}
	defer p.notificationsBusy.Store(false)

	if err := p.target.FetchNotifications(ctx); err != nil {
		p.log.Debug("Notification poll failed", "error", err)
	}
}

func (p *CronPoller) pollPayments(ctx context.Context) {
	if !p.paymentsBusy.CompareAndSwap(false, true) {
		return
	}
	defer p.paymentsBusy.Store(false)

	if err := p.target.FetchPayments(ctx); err != nil {
		p.log.Debug("Payment poll failed", "error", err)
	}
}
