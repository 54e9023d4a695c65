package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"stoik/internal/cache"
	"stoik/internal/config"
	"stoik/internal/events"
	"stoik/internal/http/handlers"
	applog "stoik/internal/log"
	"stoik/internal/repos"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[config] %v", err)
	}

	logger, err := applog.Init(cfg.Production(), cfg.LogFile)
	if err != nil {
		log.Fatalf("[log] %v", err)
	}
	defer applog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store, backend, err := repos.Open(openCtx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("store.open", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer store.Close()
	logger.Info("store.ready", zap.String("backend", backend))

	if cfg.SeedDemo {
		if err := repos.SeedDemo(ctx, store); err != nil {
			logger.Fatal("store.seed", zap.Error(err))
		}
	}

	// Dashboard cache: redis when configured, otherwise in-process.
	var dash cache.Cache = cache.NewLocal(cfg.DashboardCacheTTL)
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(cfg.RedisAddr, cfg.DashboardCacheTTL)
		if err != nil {
			logger.Warn("cache.redis.unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			defer rc.Close()
			dash = rc
		}
	}

	var pub events.Publisher = events.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic, cfg.KafkaStockTopic)
		if err != nil {
			logger.Fatal("events.kafka", zap.Error(err))
		}
		pub = kp
	}
	defer pub.Close()

	deps := handlers.NewDeps(store, cfg, dash, pub)
	opts := handlers.DefaultOptions()
	app := handlers.NewApp(deps, opts)

	go func() {
		<-ctx.Done()
		logger.Info("server.shutdown")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server.shutdown", zap.Error(err))
		}
	}()

	logger.Info("server.listen", zap.String("addr", cfg.Address()), zap.String("env", cfg.Env))
	if err := app.Listen(cfg.Address()); err != nil {
		logger.Error("server.listen", zap.Error(err))
	}
}
