// Package app contains the application setup for the product service.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/abgdnv/productcatalog/internal/service"
	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/internal/transport/rest"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/abgdnv/productcatalog/pkg/metrics"
	"github.com/abgdnv/productcatalog/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const serviceName = "product-service"

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry
}

// SetupDependencies wires the store, SKU generator and service.
// A nil dbPool selects the in-memory store.
func SetupDependencies(dbPool *pgxpool.Pool, publisher messaging.Publisher, registry *prometheus.Registry, logger *slog.Logger, cfg *config.Config) (*Dependencies, error) {
	var (
		productStore store.ProductStore
		skus         store.SKUGenerator
	)
	if dbPool != nil {
		productStore = store.NewPgStore(dbPool)
		skus = store.NewPgSKUGenerator(dbPool, cfg.SKU.Prefix)
		if registry != nil {
			if err := metrics.RegisterPgxPoolMetrics(registry, dbPool); err != nil {
				return nil, fmt.Errorf("failed to register pool metrics: %w", err)
			}
		}
	} else {
		logger.Warn("Using in-memory product store, data is lost on restart")
		productStore = store.NewInMemoryStore()
		skus = store.NewSequenceGenerator(cfg.SKU.Prefix)
	}

	if cfg.Resilience.CircuitBreaker.Enabled {
		resilient := store.NewResilientStore(productStore, cfg.Resilience.CircuitBreaker)
		if registry != nil {
			err := metrics.RegisterGaugeFunc(registry, "product_store_breaker_state",
				"Circuit breaker state in front of the product store (0 closed, 1 half-open, 2 open)",
				func() float64 { return float64(resilient.State()) })
			if err != nil {
				return nil, fmt.Errorf("failed to register breaker metrics: %w", err)
			}
		}
		productStore = resilient
		skus = resilient.GuardSKUs(skus)
	}

	return &Dependencies{
		ProductService: service.NewService(productStore, skus, publisher, logger),
		Logger:         logger,
		Registry:       registry,
	}, nil
}

// SetupHttpHandler initializes the router and routes for the product service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	var extra []func(http.Handler) http.Handler
	if deps.Registry != nil {
		extra = append(extra, metrics.NewHTTPMetrics(deps.Registry).Middleware)
	}
	mux := server.NewChiRouter(deps.Logger, extra...)
	wireRoutes(mux, deps)
	return server.WithTracing(mux, serviceName)
}

// wireRoutes sets up the HTTP routes for the product service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the product service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}
