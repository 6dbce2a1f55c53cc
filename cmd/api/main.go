package main

import (
	"context"
	"log"

	"shop-order-sync/internal/core/cache"
	"shop-order-sync/internal/core/config"
	"shop-order-sync/internal/core/logger"
	"shop-order-sync/internal/core/metrics"
	"shop-order-sync/internal/core/server"
	provideradapters "shop-order-sync/internal/features/provider/adapters"
	providerdomain "shop-order-sync/internal/features/provider/domain"
	providerservice "shop-order-sync/internal/features/provider/service"
	ordersservice "shop-order-sync/internal/features/orders/service"
	syncadapters "shop-order-sync/internal/features/sync/adapters"
	synchandler "shop-order-sync/internal/features/sync/handler"
	syncservice "shop-order-sync/internal/features/sync/service"

	"go.uber.org/zap"
)

// @title Shop Order Sync API
// @version 1.0
// @description Multi-shop order synchronization engine: fetches orders across shops and credentials, reconciles them against a Redis-persisted snapshot and serves the authoritative set.
// @contact.name API Support
// @contact.email support@shopordersync.com
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	metrics.MustRegister()

	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisCache.Close()
	l.Info("Redis connection verified")

	initial, err := provideradapters.LoadCredentials(cfg.Credentials)
	if err != nil {
		l.Fatal("Failed to load credentials", zap.Error(err))
	}
	l.Info("Credentials loaded", zap.Int("count", len(initial)))

	// Credentials are re-read per cycle so settings edits land without a
	// restart; the last good set covers transient read failures.
	lastGood := initial
	credentials := func() []providerdomain.Credential {
		creds, err := provideradapters.LoadCredentials(cfg.Credentials)
		if err != nil {
			l.Warn("Credential reload failed, using last good set", zap.Error(err))
			return lastGood
		}
		lastGood = creds
		return creds
	}

	providerClient := provideradapters.NewHTTPClient(cfg.Sync.HTTPTimeout)
	orchestrator := providerservice.NewOrchestrator(providerClient, cfg.Sync.PageSize, cfg.Sync.MaxPages, logger.Named("provider"))
	normalizer := ordersservice.NewNormalizer(logger.Named("normalizer"))
	fetchSource := syncservice.NewProviderFetchSource(orchestrator, normalizer, credentials)

	store := syncadapters.NewRedisSnapshotStore(redisCache)
	engine := syncservice.NewEngine(store, fetchSource, cfg.Sync.CacheMaxAge, logger.Named("engine"))
	scheduler := syncservice.NewScheduler(engine, logger.Named("scheduler"))

	if err := scheduler.ColdStart(context.Background()); err != nil {
		l.Fatal("Cold start failed", zap.Error(err))
	}
	scheduler.StartPolling(cfg.Sync.PollInterval)
	defer scheduler.StopPolling()

	syncHandler := synchandler.NewSyncHandler(engine, scheduler, redisCache)

	srv := server.New(cfg)

	srv.App.Post("/sync", syncHandler.TriggerSync)
	srv.App.Post("/sync/refresh", syncHandler.ForceRefresh)
	srv.App.Get("/orders", syncHandler.GetOrders)
	srv.App.Get("/orders/search", syncHandler.SearchOrders)
	srv.App.Get("/orders/stats", syncHandler.GetStats)
	srv.App.Get("/orders/warnings", syncHandler.GetWarnings)
	srv.App.Get("/orders/tracking/:number", syncHandler.GetOrderByTrackingNumber)
	srv.App.Get("/health", syncHandler.Health)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
