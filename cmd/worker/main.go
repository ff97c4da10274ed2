package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/socialapp/socialapp/internal/config"
	"github.com/socialapp/socialapp/internal/repository"
	"github.com/socialapp/socialapp/internal/workers"
	"github.com/socialapp/socialapp/pkg/cache"
	"github.com/socialapp/socialapp/pkg/logger"
	"github.com/socialapp/socialapp/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger()
	logger.Info("Starting notification worker...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	activityEventsConsumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.ActivityEvents, "notification-worker-group")

	notificationRepo := repository.NewNotificationRepository(db.DB)
	worker := workers.NewNotificationWorker(notificationRepo, redisClient, activityEventsConsumer, logger)

	go func() {
		if err := worker.Start(ctx); err != nil && err != context.Canceled {
			logger.WithError(err).Error("Notification worker stopped with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()

	if err := worker.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop notification worker")
	}

	logger.Info("Worker exited")
}
