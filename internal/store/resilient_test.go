package store

import (
	"context"
	"errors"
	"testing"
	"time"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/model"
	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDatabaseDown = errors.New("connection refused")

// flakyStore returns err from every call and counts how often it was reached.
// Not thread-safe, should be used in sequential tests only.
type flakyStore struct {
	err   error
	calls int
}

func (f *flakyStore) FindActive(context.Context, string) (*model.Product, error) {
	f.calls++
	return nil, f.err
}

func (f *flakyStore) FindAllActive(context.Context) ([]model.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []model.Product{}, nil
}

func (f *flakyStore) Save(_ context.Context, p model.Product) (*model.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &p, nil
}

// countingSKUs hands out sequential SKUs and counts allocations.
type countingSKUs struct {
	calls int
	err   error
}

func (c *countingSKUs) Next(context.Context) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return FormatSKU(DefaultSKUPrefix, int64(c.calls)), nil
}

func testBreakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:             true,
		ConsecutiveFailures: 3,
		ErrorRatePercent:    60,
		MaxRequests:         1,
		OpenTimeout:         time.Minute,
	}
}

func TestResilientStore_OpensAfterConsecutiveFailures(t *testing.T) {
	// given
	inner := &flakyStore{err: errDatabaseDown}
	rs := NewResilientStore(inner, testBreakerConfig())
	ctx := context.Background()

	// when: ConsecutiveFailures > 3 trips the breaker on the 4th failure
	for range 4 {
		_, err := rs.FindAllActive(ctx)
		require.ErrorIs(t, err, errDatabaseDown)
	}

	// then
	assert.Equal(t, gobreaker.StateOpen, rs.State())
	_, err := rs.FindActive(ctx, "FAL_000001")
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 4, inner.calls, "open breaker should not reach the store")
}

func TestResilientStore_NotFoundIsNotAFailure(t *testing.T) {
	// given
	inner := &flakyStore{err: perrors.ErrProductNotFound}
	rs := NewResilientStore(inner, testBreakerConfig())
	ctx := context.Background()

	// when
	for range 10 {
		_, err := rs.FindActive(ctx, "FAL_000001")
		require.ErrorIs(t, err, perrors.ErrProductNotFound)
	}

	// then
	assert.Equal(t, gobreaker.StateClosed, rs.State())
	assert.Equal(t, 10, inner.calls)
}

func TestResilientStore_ReturnsInnerResult(t *testing.T) {
	rs := NewResilientStore(&flakyStore{}, testBreakerConfig())

	saved, err := rs.Save(context.Background(), sampleProduct("FAL_000007"))

	require.NoError(t, err)
	assert.Equal(t, sampleProduct("FAL_000007"), *saved)
}

func TestResilientStore_OpenBreakerStopsSKUAllocation(t *testing.T) {
	// given
	inner := &flakyStore{err: errDatabaseDown}
	rs := NewResilientStore(inner, testBreakerConfig())
	skus := &countingSKUs{}
	guarded := rs.GuardSKUs(skus)
	ctx := context.Background()
	for range 4 {
		_, err := rs.Save(ctx, sampleProduct("FAL_000001"))
		require.ErrorIs(t, err, errDatabaseDown)
	}
	require.Equal(t, gobreaker.StateOpen, rs.State())

	// when
	for range 5 {
		_, err := guarded.Next(ctx)
		require.ErrorIs(t, err, gobreaker.ErrOpenState)
	}

	// then
	assert.Zero(t, skus.calls, "open breaker should not allocate SKUs")
}

func TestResilientStore_GuardedSKUsShareBreaker(t *testing.T) {
	// given
	rs := NewResilientStore(&flakyStore{}, testBreakerConfig())
	skus := &countingSKUs{err: errDatabaseDown}
	guarded := rs.GuardSKUs(skus)
	ctx := context.Background()

	// when: allocation failures trip the breaker in front of the store
	for range 4 {
		_, err := guarded.Next(ctx)
		require.ErrorIs(t, err, errDatabaseDown)
	}

	// then
	assert.Equal(t, gobreaker.StateOpen, rs.State())
	_, err := rs.FindAllActive(ctx)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestResilientStore_GuardedSKUsPassThrough(t *testing.T) {
	guarded := NewResilientStore(&flakyStore{}, testBreakerConfig()).GuardSKUs(&countingSKUs{})

	first, err := guarded.Next(context.Background())
	require.NoError(t, err)
	second, err := guarded.Next(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "FAL_000001", first)
	assert.Equal(t, "FAL_000002", second)
}

func Test_isStoreSuccess(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: true},
		{name: "not found", err: perrors.ErrProductNotFound, want: true},
		{name: "wrapped not found", err: perrors.NewNotFoundError("FAL_000001"), want: true},
		{name: "canceled", err: context.Canceled, want: true},
		{name: "database down", err: errDatabaseDown, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isStoreSuccess(tc.err))
		})
	}
}
