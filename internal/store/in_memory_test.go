package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_Contract(t *testing.T) {
	for _, tc := range storeContract {
		t.Run(tc.name, func(t *testing.T) {
			tc.run(t, context.Background(), NewInMemoryStore())
		})
	}
}

func TestInMemoryStore_NoAliasing(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewInMemoryStore()
	p := sampleProduct("FAL_000001")
	saved := mustSave(t, ctx, s, p)

	// when
	p.OtherImages[0] = "mutated-input"
	saved.OtherImages[0] = "mutated-output"
	found, err := s.FindActive(ctx, "FAL_000001")
	require.NoError(t, err)
	found.OtherImages[1] = "mutated-read"

	// then
	again, err := s.FindActive(ctx, "FAL_000001")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://any-url2.net", "https://any-url3.net"}, again.OtherImages)
}

func TestSequenceGenerator(t *testing.T) {
	ctx := context.Background()
	g := NewSequenceGenerator(DefaultSKUPrefix)

	first, err := g.Next(ctx)
	require.NoError(t, err)
	second, err := g.Next(ctx)
	require.NoError(t, err)

	assert.Equal(t, "FAL_000001", first)
	assert.Equal(t, "FAL_000002", second)
}

func TestSequenceGenerator_ConcurrentUnique(t *testing.T) {
	ctx := context.Background()
	g := NewSequenceGenerator("X_")
	const n = 200

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, n)
		wg   sync.WaitGroup
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sku, err := g.Next(ctx)
			assert.NoError(t, err)
			mu.Lock()
			seen[sku] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	assert.Contains(t, seen, "X_000200")
}

func TestFormatSKU(t *testing.T) {
	assert.Equal(t, "FAL_000001", FormatSKU("FAL_", 1))
	assert.Equal(t, "FAL_123456", FormatSKU("FAL_", 123456))
	assert.Equal(t, "FAL_1234567", FormatSKU("FAL_", 1234567))
}
