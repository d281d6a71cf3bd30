// Package app wires the storefront's components together and manages the
// process lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/text/language"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/catalog/seed"
	"github.com/utafrali/storefront/internal/client"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handlerhttp "github.com/utafrali/storefront/internal/handler/http"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/tracing"
)

// App holds the assembled service and its long-lived resources.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	server          *http.Server
	redisClient     *goredis.Client
	kafkaProducer   *kafka.Producer
	tracingShutdown func(context.Context) error
}

// New assembles the storefront from configuration.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	if cfg.TracingEnabled {
		tcfg := tracing.DefaultConfig(cfg.ServiceName)
		tcfg.Enabled = true
		tcfg.OTLPEndpoint = cfg.OTLPEndpoint
		tcfg.Environment = cfg.Environment
		shutdown, err := tracing.InitTracer(ctx, tcfg)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		a.tracingShutdown = shutdown
	}

	a.redisClient = goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	cartRepo := redisrepo.NewCartRepository(a.redisClient, cfg.CartTTL, cfg.Currency)

	a.kafkaProducer = kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	events := event.NewProducer(a.kafkaProducer, logger)

	carts := service.NewCartService(cartRepo, events, cfg.Currency, logger)

	engine := catalog.NewEngine(sortLocale(cfg.SortLocale))
	catalogSvc := service.NewCatalogService(catalogSource(cfg, logger), engine, cfg.PageSize, logger)
	if err := catalogSvc.Refresh(ctx); err != nil {
		// Serve the embedded catalog until the upstream recovers.
		logger.WarnContext(ctx, "loading catalog from upstream failed, falling back to embedded seed",
			slog.String("error", err.Error()),
		)
		fallback := service.NewCatalogService(seed.Source{}, engine, cfg.PageSize, logger)
		if err := fallback.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("loading embedded catalog: %w", err)
		}
		catalogSvc = fallback
	}

	coupons, err := cfg.Coupons()
	if err != nil {
		return nil, err
	}
	orders := client.NewSimulatedOrderGateway(cfg.CheckoutProcessingDelay, logger)
	checkout := service.NewCheckoutService(carts, orders, events, cfg.ShippingPolicy(), cfg.TaxRateBps, coupons, logger)

	authClient := client.NewAuthClient(cfg.AuthBaseURL, breakerClient("auth", logger), logger)

	healthHandler := health.NewHandler()
	healthHandler.Register("redis", cartRepo.Ping)
	healthHandler.Register("kafka", a.kafkaProducer.Ping)

	router := handlerhttp.NewRouter(handlerhttp.RouterConfig{
		ServiceName:    cfg.ServiceName,
		Logger:         logger,
		Health:         healthHandler,
		Catalog:        handlerhttp.NewCatalogHandler(catalogSvc),
		Cart:           handlerhttp.NewCartHandler(carts, catalogSvc),
		Checkout:       handlerhttp.NewCheckoutHandler(checkout),
		Auth:           handlerhttp.NewAuthHandler(authClient),
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		TracingEnabled: cfg.TracingEnabled,
	})

	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return a, nil
}

// Run serves HTTP until the context is cancelled, then shuts down cleanly.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Shutdown stops the server and releases long-lived resources.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := a.kafkaProducer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("kafka close: %w", err))
	}
	if err := a.redisClient.Close(); err != nil {
		errs = append(errs, fmt.Errorf("redis close: %w", err))
	}
	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func catalogSource(cfg *config.Config, logger *slog.Logger) service.CatalogSource {
	if cfg.ProductsBaseURL == "" {
		return seed.Source{}
	}
	return client.NewProductsClient(cfg.ProductsBaseURL, breakerClient("products", logger), logger)
}

func breakerClient(name string, logger *slog.Logger) *httpclient.CircuitBreakerClient {
	return httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig(name),
		logger,
	)
}

func sortLocale(code string) language.Tag {
	tag, err := language.Parse(code)
	if err != nil {
		return language.Spanish
	}
	return tag
}
