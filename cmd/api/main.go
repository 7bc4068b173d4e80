package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/storefront-pricing/api/controllers"
	"github.com/angelmondragon/storefront-pricing/api/routes"
	"github.com/angelmondragon/storefront-pricing/internal/aggregator"
	"github.com/angelmondragon/storefront-pricing/internal/cart"
	"github.com/angelmondragon/storefront-pricing/internal/catalog"
	"github.com/angelmondragon/storefront-pricing/internal/events"
	"github.com/angelmondragon/storefront-pricing/internal/pricing"
	"github.com/angelmondragon/storefront-pricing/pkg/config"
	"github.com/angelmondragon/storefront-pricing/pkg/db"
	"github.com/angelmondragon/storefront-pricing/pkg/logger"
	"github.com/angelmondragon/storefront-pricing/pkg/metrics"
	"github.com/angelmondragon/storefront-pricing/pkg/migrate"
	"github.com/angelmondragon/storefront-pricing/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]controllers.Pinger{}

	var dbClient *db.Client
	if cfg.Catalog.Source == config.CatalogSourceDB {
		dbClient, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()
		checks["db"] = dbClient

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		checks["redis"] = redisClient
	}

	products, err := buildCatalog(ctx, cfg, logg, dbClient)
	if err != nil {
		logg.Error(ctx, "failed to load catalog", err)
		os.Exit(1)
	}
	customers, err := loadCustomers(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to load customers", err)
		os.Exit(1)
	}

	bus := events.NewBus()
	session := catalog.NewSession(catalog.SessionOptions{
		DefaultTier: cfg.Catalog.DefaultTier,
		Tiers:       cfg.Catalog.Tiers,
		Customers:   customers,
		Notifier:    bus,
	})
	resolver := pricing.NewResolver(session)

	blobs, err := openCartBlobs(cfg, redisClient)
	if err != nil {
		logg.Error(ctx, "failed to open cart store", err)
		os.Exit(1)
	}
	carts, err := cart.NewPersistentStore(cart.StoreOptions{
		Blobs:  blobs,
		Key:    cfg.Cart.Key,
		Bus:    bus,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart store", err)
		os.Exit(1)
	}
	defer func() {
		if err := carts.Close(); err != nil {
			logg.Error(context.Background(), "error closing cart store", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	aggMetrics := metrics.NewAggregationMetrics(registry)

	agg, err := aggregator.New(aggregator.Options{
		Catalog:  products,
		Resolver: resolver,
		Logger:   logg,
		Metrics:  aggMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create aggregator", err)
		os.Exit(1)
	}

	latest := aggregator.NewLatest()
	runner, err := aggregator.NewRunner(aggregator.RunnerOptions{
		Aggregator: agg,
		Carts:      carts,
		Display:    aggregator.MultiDisplay{latest, aggregator.LogDisplay{Logger: logg}},
		Logger:     logg,
		Metrics:    aggMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create aggregation runner", err)
		os.Exit(1)
	}
	if cfg.FeatureFlags.RunnerEnabled {
		if err := runner.Start(ctx); err != nil {
			logg.Error(ctx, "failed to start aggregation runner", err)
			os.Exit(1)
		}
		defer runner.Stop()
	}

	addr := ":" + cfg.App.Port
	srvCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"catalog":    cfg.Catalog.Source,
		"cart_store": cfg.Cart.Store,
	})
	logg.Info(srvCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			Checks:    checks,
			Gatherer:  registry,
			Products:  products,
			Lister:    products,
			Resolver:  resolver,
			Session:   session,
			Customers: customers,
			Cart:      cart.NewService(carts),
			Runner:    runner,
			Latest:    latest,
		}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		logg.Info(srvCtx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error(srvCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
