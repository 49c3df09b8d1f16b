package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"

	"auction-sync/internal/api/handlers"
	"auction-sync/internal/config"
	"auction-sync/internal/domain"
	"auction-sync/internal/infrastructure/broker"
	"auction-sync/internal/infrastructure/desktop"
	"auction-sync/internal/infrastructure/leader"
	"auction-sync/internal/infrastructure/redis"
	"auction-sync/internal/infrastructure/rest"
	"auction-sync/internal/infrastructure/websocket"
	"auction-sync/internal/realtime"
	"auction-sync/internal/services"
	"auction-sync/internal/store"
	"auction-sync/pkg/logger"
	"auction-sync/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New().Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.Log.Level)
	if cfg.Instance.ID == "" {
		cfg.Instance.ID = utils.GenerateID("sync-agent")
	}
	log.Info("Starting auction sync agent", "config", cfg.GetConfigString())

	st := store.New(log.With("component", "store"))

	// Marketplace REST API
	api := rest.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log.With("component", "rest"))
	commands := services.NewCommands(api, st, services.NewBidValidator(), log.With("component", "commands"))
	poller := services.NewCronPoller(commands, cfg.Polling.NotificationsInterval, cfg.Polling.PaymentsInterval,
		log.With("component", "poller"))

	// Optional Redis: cross-agent relay and desktop leadership
	var (
		rdb       *redisClient.Client
		publisher domain.StateEventPublisher
		elections services.ElectionFactory
	)
	if cfg.Redis.Enabled {
		rdb = redisClient.NewClient(&redisClient.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		log.Info("Connected to Redis", "address", cfg.Redis.Address)

		publisher = redis.NewEventPublisher(rdb, cfg.Redis.Channel, cfg.Instance.ID)
		leaderLog := log.With("component", "leader")
		elections = func(userID string) domain.LeaderElection {
			return leader.NewRedisLeaderElection(rdb, leader.DesktopKey(userID), cfg.Leader.TTL, leaderLog)
		}
	}

	// Desktop notifications
	notifier := desktop.NewNotifier(desktop.AllowWhen(cfg.Desktop.Enabled), cfg.Desktop.Icon, log.With("component", "desktop"))
	mirror := services.NewDesktopMirror(notifier, elections, cfg.Instance.ID, log.With("component", "mirror"))

	// Realtime link
	dialer := broker.NewStompDialer(broker.Config{
		Endpoint:          cfg.Realtime.Endpoint,
		HeartbeatOutgoing: cfg.Realtime.HeartbeatOutgoing,
		HeartbeatIncoming: cfg.Realtime.HeartbeatIncoming,
	}, log.With("component", "broker"))
	sink := services.NewRealtimeSink(st, poller, mirror, log.With("component", "sink"))
	client := realtime.NewClient(dialer, sink, realtime.Options{
		ReconnectDelay: cfg.Realtime.ReconnectDelay,
		MaxAttempts:    cfg.Realtime.MaxReconnectAttempts,
	}, log.With("component", "realtime"))

	session := services.NewSession(client, api, commands, poller, mirror, st, log.With("component", "session"))

	// Live feed for local presentation clients
	connManager := websocket.NewConnectionManager(log.With("component", "feed"))
	feedHandler := websocket.NewFeedHandler(connManager, func() interface{} {
		return services.Snapshot(st)
	}, log.With("component", "feed"))
	relay := services.NewStateRelay(websocket.NewFeedNotifier(connManager), publisher, log.With("component", "relay"))
	detach := relay.Attach(st)

	h := handlers.NewHandler(session, commands, st, feedHandler.Router(), log.With("component", "api"))
	e := handlers.NewServer(h)

	if cfg.Session.Token != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		user, err := session.Login(ctx, cfg.Session.Token)
		cancel()
		if err != nil {
			log.Warn("Startup login failed", "error", err)
		} else {
			log.Info("Logged in from configured token", "user", user.Subject)
		}
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Starting local API", "address", serverAddr)

	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down auction sync agent...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session.Logout(ctx)
	detach()
	connManager.CloseAll()

	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error("Failed to close Redis connection", "error", err)
		}
	}

	log.Info("Auction sync agent stopped")
}
