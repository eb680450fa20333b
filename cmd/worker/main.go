package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/swishwear/storefront/internal/config"
	kafkax "github.com/swishwear/storefront/internal/kafka"
	"github.com/swishwear/storefront/internal/orders"
	"github.com/swishwear/storefront/internal/postgres"
	"github.com/swishwear/storefront/internal/redisx"
	"github.com/swishwear/storefront/internal/sweep"
	"github.com/swishwear/storefront/internal/worker"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName+"-worker").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &worker.Service{
		DB:    db,
		Redis: rdb,
		Name:  cfg.ServiceName + "-worker",
		Log:   log,
	}

	group := getenv("WORKER_GROUP", "storefront-worker")
	workers := mustAtoi(os.Getenv("WORKER_CONCURRENCY"), "4")

	for _, topic := range []string{orders.TopicOrderCreated, orders.TopicOrderStatusChanged} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers, log)
		go func(topic string) {
			log.Info().Str("group", group).Str("topic", topic).Int("workers", workers).Msg("consumer started")
			if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
				log.Error().Err(err).Str("topic", topic).Msg("consumer exit")
				cancel()
			}
		}(topic)
	}

	// expired pending orders: cancel and restock
	sw := &sweep.Sweeper{
		Orders:   &orders.Repo{DB: db},
		TTL:      cfg.PendingTTL,
		Interval: cfg.SweepInterval,
		Batch:    cfg.SweepBatch,
		Log:      log,
	}
	go sw.Run(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down worker")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
