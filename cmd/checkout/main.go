package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-heritage-shop.git/internal/catalog"
	"github.com/ariefcatur/go-heritage-shop.git/internal/checkout"
	"github.com/ariefcatur/go-heritage-shop.git/internal/config"
	"github.com/ariefcatur/go-heritage-shop.git/internal/events"
	kafkax "github.com/ariefcatur/go-heritage-shop.git/internal/kafka"
	"github.com/ariefcatur/go-heritage-shop.git/internal/logx"
	"github.com/ariefcatur/go-heritage-shop.git/internal/postgres"
	"github.com/ariefcatur/go-heritage-shop.git/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	name := cfg.ServiceName + "-checkout"
	log, err := logx.New(cfg.LogLevel, name)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		if cat, err = catalog.Load(cfg.CatalogPath); err != nil {
			log.Fatal("catalog", zap.Error(err))
		}
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producer: accepted & rejected, topic dipilih per pesan
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
	prod.Start(ctx)

	// Service
	svc := &checkout.Service{
		Repo:        &checkout.Repo{DB: db},
		Catalog:     cat,
		Redis:       rdb,
		Publisher:   prod,
		ServiceName: name,
		Log:         log,
	}

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.CheckoutGroup, events.TopicCheckoutRequested, cfg.CheckoutWorkers, log)

	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		log.Info("checkout consumer started",
			zap.String("group", cfg.CheckoutGroup),
			zap.String("topic", events.TopicCheckoutRequested),
			zap.Int("workers", cfg.CheckoutWorkers))
		if err := cons.Start(ctx, svc.HandleCheckoutRequested); err != nil {
			log.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer")
	cancel()
	// producer baru ditutup setelah semua worker selesai publish
	<-consumed
	prod.Close()
	prod.WaitClosed()
}
