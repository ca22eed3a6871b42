// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"fmt"

	"github.com/abgdnv/productcatalog/internal/model"
)

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
// Only active products (status = true) are ever returned; soft-deleted rows stay in the store.
type ProductStore interface {
	// FindActive retrieves a single active product by its SKU.
	// Returns ErrProductNotFound if no active product exists with the given SKU.
	FindActive(ctx context.Context, sku string) (*model.Product, error)

	// FindAllActive returns all active products ordered by SKU.
	// Returns an empty slice if no products exist.
	FindAllActive(ctx context.Context) ([]model.Product, error)

	// Save inserts the product or replaces the stored record with the same SKU,
	// and returns the stored copy.
	Save(ctx context.Context, product model.Product) (*model.Product, error)
}

// SKUGenerator allocates product identifiers.
// Every call returns a new identifier, strictly greater than any returned before, even under concurrent use.
type SKUGenerator interface {
	Next(ctx context.Context) (string, error)
}

// DefaultSKUPrefix is prepended to every generated SKU unless configured otherwise.
const DefaultSKUPrefix = "FAL_"

// FormatSKU renders the n-th SKU, e.g. FAL_000001.
func FormatSKU(prefix string, n int64) string {
	return fmt.Sprintf("%s%06d", prefix, n)
}

// copyProduct returns p with its own images slice, so callers cannot mutate stored state.
func copyProduct(p model.Product) model.Product {
	if p.OtherImages != nil {
		images := make([]string, len(p.OtherImages))
		copy(images, p.OtherImages)
		p.OtherImages = images
	}
	return p
}
