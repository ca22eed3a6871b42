// Package main runs the product catalog HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/abgdnv/productcatalog/internal/app"
	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/migrations"
	"github.com/abgdnv/productcatalog/pkg/bootstrap"
	pconfig "github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/config/configloader"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/abgdnv/productcatalog/pkg/metrics"
	pnats "github.com/abgdnv/productcatalog/pkg/nats"
	"github.com/abgdnv/productcatalog/pkg/server"
	"github.com/abgdnv/productcatalog/pkg/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const serviceName = "product"

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the application, connects its backing services and starts the HTTP, metrics and pprof servers.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName, configloader.WithDefaults(config.Defaults()))
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if cfg.Telemetry.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer shutdownWithTimeout(logger, cfg, "tracer provider", tp.Shutdown)
	}

	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		mp, err := telemetry.NewMeterProvider(serviceName, registry)
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		defer shutdownWithTimeout(logger, cfg, "meter provider", mp.Shutdown)
	}

	dbPool, err := openDatabase(ctx, logger, cfg)
	if err != nil {
		return err
	}
	if dbPool != nil {
		defer dbPool.Close()
	}

	publisher, closePublisher, err := openPublisher(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	deps, err := app.SetupDependencies(dbPool, publisher, registry, logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up dependencies: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	serve(g, gCtx, logger, cfg, "HTTP", app.SetupHttpServer(deps, cfg))
	if cfg.PProf.Enabled {
		serve(g, gCtx, logger, cfg, "pprof", server.NewPProfServer(cfg.PProf.Addr))
	}
	if registry != nil {
		serve(g, gCtx, logger, cfg, "metrics", metrics.NewServer(cfg.Metrics.Addr, registry))
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// openDatabase migrates and connects to PostgreSQL. It returns a nil pool for the in-memory driver.
func openDatabase(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.Database.Driver == pconfig.DriverMemory {
		return nil, nil
	}
	if cfg.Database.Migrate {
		if err := migrations.Up(cfg.Database.URL); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("Database schema is up to date")
	}
	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	logger.Info("Successfully connected to the database!")
	return dbPool, nil
}

// openPublisher connects to NATS JetStream when enabled and makes sure the product stream exists.
func openPublisher(ctx context.Context, logger *slog.Logger, cfg *config.Config) (messaging.Publisher, func(), error) {
	if !cfg.NATS.Enabled {
		logger.Info("NATS is disabled, product events are not published")
		return messaging.NoopPublisher{}, func() {}, nil
	}
	nc, err := pnats.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := pnats.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.NATS.Timeout)
	defer cancel()
	if _, err := pnats.EnsureStream(streamCtx, js, cfg.NATS.Stream, messaging.ProductsSubjects); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS", slog.String("stream", cfg.NATS.Stream))
	return pnats.NewNatsPublisher(js), func() {
		if err := nc.Drain(); err != nil {
			logger.Warn("failed to drain NATS connection", "error", err)
		}
	}, nil
}

// serve starts srv in the group and shuts it down gracefully when ctx is cancelled.
func serve(g *errgroup.Group, ctx context.Context, logger *slog.Logger, cfg *config.Config, name string, srv *http.Server) {
	g.Go(func() error {
		logger.Info(name+" server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down " + name + " server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func shutdownWithTimeout(logger *slog.Logger, cfg *config.Config, name string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn("failed to shut down "+name, "error", err)
	}
}
