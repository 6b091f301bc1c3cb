package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-heritage-shop.git/internal/catalog"
	"github.com/ariefcatur/go-heritage-shop.git/internal/checkout"
	"github.com/ariefcatur/go-heritage-shop.git/internal/config"
	"github.com/ariefcatur/go-heritage-shop.git/internal/coupon"
	"github.com/ariefcatur/go-heritage-shop.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-heritage-shop.git/internal/kafka"
	"github.com/ariefcatur/go-heritage-shop.git/internal/kv"
	"github.com/ariefcatur/go-heritage-shop.git/internal/logx"
	"github.com/ariefcatur/go-heritage-shop.git/internal/postgres"
	"github.com/ariefcatur/go-heritage-shop.git/internal/redisx"
	"github.com/ariefcatur/go-heritage-shop.git/internal/shop"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logx.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatal("catalog", zap.Error(err))
	}
	policy, err := coupon.ParsePolicy(cfg.CouponPolicy)
	if err != nil {
		log.Fatal("coupon policy", zap.Error(err))
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
	prod.Start(ctx)

	profiles := &postgres.Store{DB: db}
	sessions := redisx.NewStore(rdb, cfg.SessionTTL)
	svc := shop.New(shop.Options{
		Catalog:     cat,
		Policy:      policy,
		Profile:     func(id string) kv.Store { return kv.Prefixed(profiles, postgres.ProfilePrefix(id)) },
		Session:     func(id string) kv.Store { return kv.Prefixed(sessions, redisx.SessionPrefix(id)) },
		Publisher:   prod,
		ServiceName: cfg.ServiceName,
		Logger:      log,
	})

	router := httpx.NewRouter(log)
	sh := &httpx.ShopHandler{
		Shop:          svc,
		Checkouts:     &checkout.Repo{DB: db},
		Redis:         rdb,
		Log:           log,
		SecureCookies: cfg.SecureCookies,
	}
	sh.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	// graceful shutdown
	go func() {
		log.Info("http listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("coupon_policy", policy.String()),
			zap.Int("products", len(cat.Products())))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	prod.WaitClosed() // drain
	cancel()
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}
