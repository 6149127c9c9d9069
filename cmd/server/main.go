// Package main boots the customizer engine: it loads the profile config,
// assembles the dependency graph with samber/do, serves the HTTP API, and
// drains in-flight action executions before exiting on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/samber/do/v2"

	adapthttp "github.com/printcraft/customizer-engine/internal/adapters/http"
	"github.com/printcraft/customizer-engine/internal/adapters/http/handlers"
	"github.com/printcraft/customizer-engine/internal/adapters/http/middleware"

	"github.com/printcraft/customizer-engine/internal/adapters/cache"
	"github.com/printcraft/customizer-engine/internal/adapters/images"
	"github.com/printcraft/customizer-engine/internal/adapters/store/memory"
	"github.com/printcraft/customizer-engine/internal/app"
	"github.com/printcraft/customizer-engine/internal/app/executor"
	"github.com/printcraft/customizer-engine/internal/platform/clock"
	"github.com/printcraft/customizer-engine/internal/platform/config"
	"github.com/printcraft/customizer-engine/internal/platform/health"
	"github.com/printcraft/customizer-engine/internal/platform/httpclient"
	"github.com/printcraft/customizer-engine/internal/platform/logging"
	"github.com/printcraft/customizer-engine/internal/platform/telemetry"
	"github.com/printcraft/customizer-engine/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	drainTimeout = 15 * time.Second
	flushTimeout = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("set APP_PROFILE to a config profile (local, dev, qa, prod)")
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	stack, err := setupTelemetry(context.Background(), cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, stack.instruments)
	registerDependencies(injector, cfg, logger)

	// Invoking the server pulls the whole graph, so provider errors
	// surface here rather than on the first request.
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("wire dependencies: %w", err)
	}
	wireHealthCheckers(injector, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start() }()

	logger.Info("customizer engine up",
		slog.String("profile", profile),
		slog.Int("port", cfg.Server.Port))

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), drainTimeout)
	defer cancelDrain()
	if err := server.Shutdown(drainCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
	<-serverErr

	flushCtx, cancelFlush := context.WithTimeout(context.Background(), flushTimeout)
	defer cancelFlush()
	if err := stack.Shutdown(flushCtx); err != nil {
		logger.Error("telemetry shutdown", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// wireHealthCheckers registers the readiness probes once the graph exists:
// the outbound image client always, Redis only when it backs the cache.
func wireHealthCheckers(injector do.Injector, cfg *config.Config) {
	registry := do.MustInvoke[ports.HealthRegistry](injector)
	registry.Register(do.MustInvoke[*httpclient.Client](injector))
	if cfg.Cache.Backend == "redis" {
		registry.Register(redisChecker{do.MustInvoke[*cache.Redis](injector)})
	}
}

// redisChecker adapts the Redis invalidator to the health checker shape.
type redisChecker struct {
	r *cache.Redis
}

func (c redisChecker) Name() string { return "redis" }

func (c redisChecker) HealthCheck(ctx context.Context) error { return c.r.Ping(ctx) }

// telemetryStack owns the OpenTelemetry providers. Every field stays nil
// when telemetry is disabled, and Shutdown tolerates that.
type telemetryStack struct {
	traces      *sdktrace.TracerProvider
	meters      *sdkmetric.MeterProvider
	instruments *telemetry.Metrics
}

func (s *telemetryStack) Shutdown(ctx context.Context) error {
	var errs []error
	if s.traces != nil {
		errs = append(errs, s.traces.Shutdown(ctx))
	}
	if s.meters != nil {
		errs = append(errs, s.meters.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func setupTelemetry(ctx context.Context, cfg config.TelemetryConfig) (*telemetryStack, error) {
	stack := &telemetryStack{}
	if !cfg.Enabled {
		return stack, nil
	}

	var err error
	stack.traces, err = telemetry.InitTracer(ctx, cfg.ServiceName, cfg.Exporter, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("tracer: %w", err)
	}

	stack.meters, err = telemetry.InitMeter(ctx, cfg.ServiceName, cfg.Exporter, cfg.Endpoint)
	if err != nil {
		_ = stack.Shutdown(ctx)
		return nil, fmt.Errorf("meter: %w", err)
	}

	stack.instruments, err = telemetry.NewMetrics(stack.meters)
	if err != nil {
		_ = stack.Shutdown(ctx)
		return nil, fmt.Errorf("instruments: %w", err)
	}

	return stack, nil
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.ProvideValue[clock.Clock](injector, clock.NewSystem())

	// Stores.
	do.Provide(injector, func(_ do.Injector) (ports.ActionStore, error) {
		return memory.NewActionStore(), nil
	})
	do.Provide(injector, func(_ do.Injector) (ports.ConfigStore, error) {
		return memory.NewConfigStore(), nil
	})
	do.Provide(injector, func(_ do.Injector) (ports.DesignStore, error) {
		return memory.NewDesignStore(), nil
	})
	do.Provide(injector, func(_ do.Injector) (ports.AssetStore, error) {
		return memory.NewAssetStore(), nil
	})

	// Cache invalidation backend.
	do.Provide(injector, func(i do.Injector) (*cache.Redis, error) {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		return cache.NewRedis(client, logger), nil
	})
	do.Provide(injector, func(i do.Injector) (ports.CacheInvalidator, error) {
		if cfg.Cache.Backend == "redis" {
			return do.MustInvoke[*cache.Redis](i), nil
		}
		return cache.NewMemory(cfg.Cache.TTL), nil
	})

	// Image fetch and storage.
	do.Provide(injector, func(i do.Injector) (*httpclient.Client, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return httpclient.New(&cfg.Fetcher.Client, "image-origin", metrics, logger), nil
	})
	do.Provide(injector, func(i do.Injector) (ports.ImageFetcher, error) {
		client := do.MustInvoke[*httpclient.Client](i)
		return images.NewFetcher(client, cfg.Fetcher.MaxImageBytes), nil
	})
	do.Provide(injector, func(_ do.Injector) (*images.Store, error) {
		return images.NewStore(cfg.Images.PublicBaseURL), nil
	})

	// Executors and registry.
	do.Provide(injector, func(i do.Injector) (*executor.Config, error) {
		return executor.NewConfig(
			do.MustInvoke[ports.ConfigStore](i),
			do.MustInvoke[ports.CacheInvalidator](i),
			do.MustInvoke[clock.Clock](i),
			logger,
		), nil
	})
	do.Provide(injector, func(i do.Injector) (*executor.Bulk, error) {
		return executor.NewBulk(do.MustInvoke[*executor.Config](i), logger), nil
	})
	do.Provide(injector, func(i do.Injector) (*executor.Registry, error) {
		configExec := do.MustInvoke[*executor.Config](i)
		invalidator := do.MustInvoke[ports.CacheInvalidator](i)
		clk := do.MustInvoke[clock.Clock](i)

		registry := executor.NewRegistry()
		registry.Register(configExec.Bindings())
		registry.Register(do.MustInvoke[*executor.Bulk](i).Bindings())
		registry.Register(executor.NewSettings(configExec, logger).Bindings())
		registry.Register(executor.NewProduct(
			do.MustInvoke[ports.ConfigStore](i),
			do.MustInvoke[ports.AssetStore](i),
			invalidator, clk, logger,
		).Bindings())
		registry.Register(executor.NewDesignPages(
			do.MustInvoke[ports.DesignStore](i),
			do.MustInvoke[ports.ConfigStore](i),
			invalidator, clk, logger,
		).Bindings())
		registry.Register(executor.NewLibrary(
			do.MustInvoke[ports.AssetStore](i),
			do.MustInvoke[ports.ImageFetcher](i),
			do.MustInvoke[*images.Store](i),
			invalidator, clk, logger,
			cfg.Gallery.Workers,
		).Bindings())
		return registry, nil
	})

	// Application service.
	do.Provide(injector, func(i do.Injector) (ports.ActionService, error) {
		return app.NewActionService(
			do.MustInvoke[ports.ActionStore](i),
			do.MustInvoke[*executor.Registry](i),
			do.MustInvoke[*executor.Bulk](i),
			do.MustInvoke[clock.Clock](i),
			logger,
			do.MustInvoke[*telemetry.Metrics](i),
		), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	// Handlers and router.
	do.Provide(injector, func(i do.Injector) (*handlers.ActionHandler, error) {
		return handlers.NewActionHandler(do.MustInvoke[ports.ActionService](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*handlers.ConfigHandler, error) {
		return handlers.NewConfigHandler(do.MustInvoke[ports.ActionService](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		return handlers.NewHealthHandler(do.MustInvoke[ports.HealthRegistry](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		actionH := do.MustInvoke[*handlers.ActionHandler](i)
		configH := do.MustInvoke[*handlers.ConfigHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		media := do.MustInvoke[*images.Store](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(actionH, configH, healthH, media,
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.Timeout(cfg.Server.WriteTimeout),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}
