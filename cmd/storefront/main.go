package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/foodie/internal/app"
	"github.com/nikolayk812/foodie/internal/catalog"
	"github.com/nikolayk812/foodie/internal/config"
	"github.com/nikolayk812/foodie/internal/gateway"
	foodiehttp "github.com/nikolayk812/foodie/internal/http"
	"github.com/nikolayk812/foodie/internal/logging"
	"github.com/nikolayk812/foodie/internal/migrations"
	"github.com/nikolayk812/foodie/internal/notify"
	"github.com/nikolayk812/foodie/internal/port"
	"github.com/nikolayk812/foodie/internal/pricing"
	"github.com/nikolayk812/foodie/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logging.New: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("openStore: %w", err)
	}
	defer closeStore()

	loader := catalog.NewLoader(catalog.NewStaticProvider(cfg.Pricing.Currency, cfg.Menu.Latency), logger.Named("catalog"))

	submitter := gateway.NewBreaker(
		gateway.WithTimeout(
			gateway.NewSimulated(cfg.Submit.Latency, cfg.Submit.FailureRate, logger.Named("gateway")),
			cfg.Submit.Timeout),
		gateway.BreakerSettings{
			Name:        "order-gateway",
			MaxFailures: uint32(cfg.Submit.BreakerMaxFailures),
			OpenTimeout: cfg.Submit.BreakerOpenTimeout,
		},
		logger.Named("breaker"))

	calc := pricing.NewCalculator(cfg.Pricing.Currency, cfg.Pricing.DeliveryFee, cfg.Pricing.TaxRate)
	logNotifier := notify.NewLogNotifier(logger)

	sessions := foodiehttp.NewSessions(func(ctx context.Context, id string) (*app.App, error) {
		a := app.New(id, app.Deps{
			Loader:    loader,
			Submitter: submitter,
			Store:     repository.NewPersistentStore(kv, id),
			Pricing:   calc,
			Notifier:  logNotifier,
			ToastTTL:  cfg.ToastTTL,
			Logger:    logger,
		})

		// a failed menu load leaves the session up with ordering disabled
		if err := a.Start(ctx); err != nil {
			logger.Warn("session started without menu", zap.String("session_id", id), zap.Error(err))
		}

		return a, nil
	}, foodiehttp.SessionsConfig{
		IdleTTL:     cfg.HTTP.SessionIdleTTL,
		MaxSessions: cfg.HTTP.MaxSessions,
	}, logger.Named("sessions"))

	go sessions.Run(ctx, time.Minute)

	router := foodiehttp.NewRouter(sessions, foodiehttp.RouterConfig{RequestTimeout: cfg.HTTP.RequestTimeout}, logger.Named("http"))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, "storefront"),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("storefront starting", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

func openStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (port.KeyValueStore, func(), error) {
	switch cfg.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("client.Ping: %w", err)
		}
		logger.Info("using redis store", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.TTL))
		return repository.NewRedisStore(client, cfg.TTL), func() { _ = client.Close() }, nil

	case config.BackendPostgres:
		if err := migrations.Up(cfg.PostgresDSN); err != nil {
			return nil, nil, fmt.Errorf("migrations.Up: %w", err)
		}

		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("pool.Ping: %w", err)
		}
		logger.Info("using postgres store")
		return repository.NewPostgresStore(pool), pool.Close, nil

	default:
		logger.Info("using in-memory store")
		return repository.NewMemoryStore(), func() {}, nil
	}
}
