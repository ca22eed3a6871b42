package store

import (
	"context"
	"errors"
	"time"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/model"
	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// ResilientStore wraps a ProductStore in a circuit breaker.
// While the breaker is open every call fails fast with gobreaker.ErrOpenState.
type ResilientStore struct {
	next    ProductStore
	breaker *gobreaker.CircuitBreaker[any]
}

// NewResilientStore decorates next with a circuit breaker configured from cfg.
func NewResilientStore(next ProductStore, cfg config.CircuitBreakerConfig) *ResilientStore {
	return &ResilientStore{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[any](breakerSettings(cfg)),
	}
}

func breakerSettings(cfg config.CircuitBreakerConfig) gobreaker.Settings {
	maxRequests := cfg.MaxRequests
	if maxRequests == 0 {
		maxRequests = 3
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 5 * time.Second
	}
	return gobreaker.Settings{
		Name:        "product-store-cb",
		MaxRequests: maxRequests,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: isStoreSuccess,
	}
}

// isStoreSuccess reports whether err leaves the store healthy.
// A missing product or a caller giving up is not a store failure.
func isStoreSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, perrors.ErrProductNotFound) ||
		errors.Is(err, context.Canceled)
}

func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

func (s *ResilientStore) FindActive(ctx context.Context, sku string) (*model.Product, error) {
	return execute(s.breaker, func() (*model.Product, error) {
		return s.next.FindActive(ctx, sku)
	})
}

func (s *ResilientStore) FindAllActive(ctx context.Context) ([]model.Product, error) {
	return execute(s.breaker, func() ([]model.Product, error) {
		return s.next.FindAllActive(ctx)
	})
}

func (s *ResilientStore) Save(ctx context.Context, product model.Product) (*model.Product, error) {
	return execute(s.breaker, func() (*model.Product, error) {
		return s.next.Save(ctx, product)
	})
}

// GuardSKUs returns a generator that allocates through next behind this store's breaker,
// so an open breaker also stops SKU allocation.
func (s *ResilientStore) GuardSKUs(next SKUGenerator) SKUGenerator {
	return &resilientSKUs{next: next, breaker: s.breaker}
}

type resilientSKUs struct {
	next    SKUGenerator
	breaker *gobreaker.CircuitBreaker[any]
}

func (g *resilientSKUs) Next(ctx context.Context) (string, error) {
	return execute(g.breaker, func() (string, error) {
		return g.next.Next(ctx)
	})
}

// State exposes the breaker state for health reporting.
func (s *ResilientStore) State() gobreaker.State {
	return s.breaker.State()
}
