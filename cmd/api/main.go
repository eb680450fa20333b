package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/swishwear/storefront/internal/auth"
	"github.com/swishwear/storefront/internal/cart"
	"github.com/swishwear/storefront/internal/catalog"
	"github.com/swishwear/storefront/internal/config"
	"github.com/swishwear/storefront/internal/httpx"
	kafkax "github.com/swishwear/storefront/internal/kafka"
	"github.com/swishwear/storefront/internal/member"
	"github.com/swishwear/storefront/internal/orders"
	"github.com/swishwear/storefront/internal/payment"
	"github.com/swishwear/storefront/internal/postgres"
	"github.com/swishwear/storefront/internal/redisx"
	"github.com/swishwear/storefront/internal/reports"
	"github.com/swishwear/storefront/internal/upload"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prodCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, log)
	prodCreated.Start(ctx)
	prodStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024, log)
	prodStatus.Start(ctx)

	tokens := auth.NewMaker(cfg.JWTSecret, cfg.TokenTTL)
	uploads := &upload.Storage{Dir: cfg.UploadDir}
	pay := &payment.Generator{Target: cfg.PromptPayID}

	memberRepo := &member.Repo{DB: db}
	catalogRepo := &catalog.Repo{DB: db}
	cartRepo := &cart.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	reportRepo := &reports.Repo{DB: db}

	router := httpx.NewRouter(log)

	(&httpx.AuthHandler{Members: memberRepo, Tokens: tokens, Log: log}).Register(router)
	(&httpx.CatalogHandler{Repo: catalogRepo, Members: memberRepo, Redis: rdb, Log: log}).Register(router)

	router.Group(func(g chi.Router) {
		g.Use(auth.RequireAuth(tokens))
		(&httpx.ProfileHandler{Members: memberRepo, Log: log}).Register(g)
		(&httpx.CartHandler{Repo: cartRepo, Log: log}).Register(g)
		(&httpx.OrdersHandler{
			Repo:    orderRepo,
			Slips:   uploads,
			Pay:     pay,
			Created: prodCreated,
			Status:  prodStatus,
			Redis:   rdb,
			Service: cfg.ServiceName,
			Log:     log,
		}).Register(g)
	})

	router.Group(func(g chi.Router) {
		g.Use(auth.RequireAuth(tokens), auth.RequireAdmin)
		(&httpx.AdminHandler{
			Orders:   orderRepo,
			Catalog:  catalogRepo,
			Reports:  reportRepo,
			Pictures: uploads,
			Status:   prodStatus,
			Redis:    rdb,
			Service:  cfg.ServiceName,
			Log:      log,
		}).Register(g)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prodCreated.Close()
	prodStatus.Close()
	cancel()
	prodCreated.WaitClosed()
	prodStatus.WaitClosed()
}
