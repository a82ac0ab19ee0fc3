package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/contact"
	mercadopagowebhook "github.com/angelmondragon/storefront-backend/internal/webhooks/mercadopago"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/instance"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/mercadopago"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if redisRequired(cfg) {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	} else {
		logg.Warn(ctx, "redis not configured; idempotency, rate limiting and webhook de-duplication disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefrontMetrics(reg)

	currencyUnit, err := cfg.MercadoPago.CurrencyUnit()
	if err != nil {
		return err
	}

	var (
		gateway  checkout.Gateway
		payments mercadopagowebhook.PaymentFetcher
	)
	if cfg.MercadoPago.Configured() {
		mpClient, err := mercadopago.NewClient(ctx, cfg.MercadoPago, logg)
		if err != nil {
			return err
		}
		gateway = mpClient
		payments = mpClient
	} else {
		logg.Warn(ctx, "mercadopago access token missing; checkout returns a configuration error")
	}

	catalogSvc, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}

	cartSvc, err := newCartService(cfg, logg, redisClient, storefrontMetrics)
	if err != nil {
		return err
	}

	preferences := checkout.NewRepository(dbClient.DB())
	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
		Gateway:    gateway,
		Repo:       preferences,
		Storefront: cfg.Storefront,
		Currency:   currencyUnit,
		Logger:     logg,
		Metrics:    storefrontMetrics,
	})
	if err != nil {
		return err
	}

	contactSvc, err := contact.NewService(contact.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return err
	}

	var webhookSvc *mercadopagowebhook.Service
	if payments != nil {
		params := mercadopagowebhook.ServiceParams{
			Payments:          payments,
			Events:            mercadopagowebhook.NewEventRepository(dbClient.DB()),
			Preferences:       preferences,
			TransactionRunner: dbClient,
			Logger:            logg,
			Metrics:           storefrontMetrics,
		}
		if redisClient != nil {
			guard, err := mercadopagowebhook.NewIdempotencyGuard(redisClient, cfg.MercadoPago.IdempotencyTTL)
			if err != nil {
				return err
			}
			params.Guard = guard
		}
		webhookSvc, err = mercadopagowebhook.NewService(params)
		if err != nil {
			return err
		}
	}

	routerParams := routes.RouterParams{
		Config:          cfg,
		Logger:          logg,
		Metrics:         storefrontMetrics,
		Gatherer:        reg,
		DB:              dbClient,
		Redis:           redisClient,
		Catalog:         catalogSvc,
		Cart:            cartSvc,
		Checkout:        checkoutSvc,
		Contact:         contactSvc,
		WebhookVerifier: mercadopagowebhook.NewVerifier(cfg.MercadoPago.WebhookSecret),
	}
	if webhookSvc != nil {
		routerParams.Webhooks = webhookSvc
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"instance":     instance.GetID(),
		"cart_storage": cfg.Cart.Storage,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(routerParams),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// redisRequired is false only for in-memory carts with no redis configured.
func redisRequired(cfg *config.Config) bool {
	if !cfg.Cart.UsesMemory() {
		return true
	}
	return cfg.Redis.URL != "" || cfg.Redis.Address != ""
}

func newCartService(cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, m *metrics.StorefrontMetrics) (*cart.Service, error) {
	params := cart.ServiceParams{Logger: logg, Metrics: m}
	if cfg.Cart.UsesMemory() {
		params.Storage = cart.NewMemoryStorage()
		return cart.NewService(params)
	}
	storage, err := cart.NewRedisStorage(redisClient, cfg.Cart.TTL)
	if err != nil {
		return nil, err
	}
	params.Storage = storage
	params.KeyFor = redisClient.CartKey
	return cart.NewService(params)
}
