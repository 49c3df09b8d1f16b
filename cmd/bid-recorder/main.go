package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"

	"auction-sync/internal/config"
	"auction-sync/internal/infrastructure/mysql"
	"auction-sync/internal/infrastructure/redis"
	"auction-sync/internal/services"
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
	log.Info("Starting bid recorder")

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	// Initialize MySQL
	db, err := utils.InitializeMysql(ctx, cfg.MySQL)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	bidRepo := mysql.NewMySQLBidRepository(db)
	if err := bidRepo.EnsureSchema(ctx); err != nil {
		log.Error("Failed to prepare bid table", "error", err)
		os.Exit(1)
	}

	subscriber := redis.NewRedisEventSubscriber(rdb, cfg.Redis.Channel, log)
	recorder := services.NewBidRecorder(bidRepo, log)

	runCtx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := subscriber.SubscribeToAuctionUpdates(runCtx, recorder.HandleAuctionUpdate)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Bid recorder subscription failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down bid recorder...")
	stop()
	<-done
	log.Info("Bid recorder stopped")
}
