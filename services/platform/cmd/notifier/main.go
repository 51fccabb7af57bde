package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fanvault/pkg/cache"
	"fanvault/pkg/config"
	"fanvault/pkg/logger"
	"fanvault/pkg/queue"
	"fanvault/services/platform/internal/notifier"
)

const backlogInterval = 15 * time.Second

// The notifier consumes monetization events from RabbitMQ and records them
// in each creator's redis activity feed, which the API serves at
// /creators/me/activity.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewWithOptions(cfg.LogLevel, cfg.IsProduction(), os.Stdout).With("notifier")

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}
	defer redisClient.Close()

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v", err)
		panic(err)
	}
	defer queueClient.Close()

	n := notifier.New(notifier.NewFeed(redisClient, notifier.DefaultFeedSize), log)

	log.Info("Starting notification queue processor...")
	if err := queueClient.Consume(n.Handle); err != nil {
		log.Error("Error starting notification queue consumer: %v", err)
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifier.WatchBacklog(ctx, queueClient, backlogInterval, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Notifier exited")
}
