package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-delivery-marketplace/internal/accounts"
	"github.com/ariefcatur/go-delivery-marketplace/internal/auth"
	"github.com/ariefcatur/go-delivery-marketplace/internal/cart"
	"github.com/ariefcatur/go-delivery-marketplace/internal/catalog"
	"github.com/ariefcatur/go-delivery-marketplace/internal/config"
	"github.com/ariefcatur/go-delivery-marketplace/internal/dashboard"
	"github.com/ariefcatur/go-delivery-marketplace/internal/events"
	"github.com/ariefcatur/go-delivery-marketplace/internal/httpx"
	kafkax "github.com/ariefcatur/go-delivery-marketplace/internal/kafka"
	"github.com/ariefcatur/go-delivery-marketplace/internal/notify"
	"github.com/ariefcatur/go-delivery-marketplace/internal/orders"
	"github.com/ariefcatur/go-delivery-marketplace/internal/redisx"
	"github.com/ariefcatur/go-delivery-marketplace/internal/reviews"
	"github.com/ariefcatur/go-delivery-marketplace/internal/rewards"
	"github.com/ariefcatur/go-delivery-marketplace/internal/staff"
	"github.com/ariefcatur/go-delivery-marketplace/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := config.NewLogger(cfg)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	var rdb *redisx.Client
	if cfg.RedisAddr != "" {
		if rdb, err = redisx.New(ctx, cfg.RedisAddr); err != nil {
			return err
		}
		defer rdb.Close()
	} else {
		log.Info("redis disabled, no idempotency keys or status cache")
	}

	// The producer outlives the HTTP server so in-flight publishes are flushed.
	prodCtx, stopProducer := context.WithCancel(context.Background())
	var pub events.Publisher = events.LogPublisher{Log: log}
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
		prod.Start(prodCtx)
		pub = prod
	} else {
		log.Info("kafka disabled, events are only logged")
	}

	rw := &rewards.Service{
		Store:    st,
		Redis:    rdb,
		Log:      log,
		Code:     cfg.ReferralCouponCode,
		Validity: cfg.ReferralCouponValidity,
	}
	if cfg.InProcessRewards() {
		local := &events.InProcess{Next: pub, Log: log}
		local.Subscribe(events.TopicUserRegistered, rw.HandleUserRegistered)
		pub = local
		log.Info("referral rewards granted in-process", "store", cfg.StoreDriver)
	}

	iss := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	api := &httpx.API{
		Log:       log,
		Issuer:    iss,
		Redis:     rdb,
		Accounts:  &accounts.Service{Store: st, Issuer: iss, Publisher: pub, Producer: cfg.ServiceName, Log: log},
		Catalog:   catalog.New(st),
		Cart:      cart.New(st),
		Orders:    &orders.Service{Store: st, Publisher: pub, Producer: cfg.ServiceName, Log: log},
		Notify:    notify.New(st),
		Reviews:   reviews.New(st),
		Staff:     staff.New(st),
		Dashboard: dashboard.New(st),
		Rewards:   rw,
	}
	router := httpx.NewRouter(log)
	api.Register(router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	err = g.Wait()

	stopProducer()
	if prod != nil {
		prod.WaitClosed()
	}
	return err
}
