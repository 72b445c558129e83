package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-delivery-marketplace/internal/config"
	"github.com/ariefcatur/go-delivery-marketplace/internal/events"
	kafkax "github.com/ariefcatur/go-delivery-marketplace/internal/kafka"
	"github.com/ariefcatur/go-delivery-marketplace/internal/redisx"
	"github.com/ariefcatur/go-delivery-marketplace/internal/rewards"
	"github.com/ariefcatur/go-delivery-marketplace/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	cfg.ServiceName += "-rewards"
	log := config.NewLogger(cfg)
	if err := cfg.ValidateRewards(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.Error("rewards stopped", "err", err)
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
	}

	svc := &rewards.Service{
		Store:    st,
		Redis:    rdb,
		Log:      log,
		Code:     cfg.ReferralCouponCode,
		Validity: cfg.ReferralCouponValidity,
	}
	topics := []string{events.TopicUserRegistered}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.RewardsGroup, topics, cfg.RewardsWorkers, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("rewards consumer started", "group", cfg.RewardsGroup, "topics", topics, "workers", cfg.RewardsWorkers)
		return cons.Start(gctx, svc.HandleUserRegistered)
	})
	return g.Wait()
}
