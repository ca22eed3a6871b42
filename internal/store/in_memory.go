package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/model"
)

// InMemoryStore implements ProductStore using an in-memory map.
// Soft-deleted products are kept in the map, as a table would keep the row.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[string]model.Product
}

// NewInMemoryStore creates a new instance of ProductStore backed by a map.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products: make(map[string]model.Product),
	}
}

// FindActive retrieves an active product by its SKU.
func (s *InMemoryStore) FindActive(_ context.Context, sku string) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[sku]
	if !ok || !p.Status {
		return nil, perrors.ErrProductNotFound
	}
	found := copyProduct(p)
	return &found, nil
}

// FindAllActive retrieves all active products ordered by SKU.
func (s *InMemoryStore) FindAllActive(_ context.Context) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Status {
			list = append(list, copyProduct(p))
		}
	}
	slices.SortFunc(list, func(a, b model.Product) int {
		return strings.Compare(a.SKU, b.SKU)
	})
	return list, nil
}

// Save upserts the product by its SKU.
func (s *InMemoryStore) Save(_ context.Context, product model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyProduct(product)
	if stored.OtherImages == nil {
		stored.OtherImages = []string{}
	}
	s.products[stored.SKU] = stored

	saved := copyProduct(stored)
	return &saved, nil
}

// SequenceGenerator implements SKUGenerator with a process-local atomic counter.
type SequenceGenerator struct {
	prefix  string
	counter atomic.Int64
}

// NewSequenceGenerator creates a generator whose first SKU is prefix + 000001.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// Next returns the next SKU.
func (g *SequenceGenerator) Next(_ context.Context) (string, error) {
	return FormatSKU(g.prefix, g.counter.Add(1)), nil
}
