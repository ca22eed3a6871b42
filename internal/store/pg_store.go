package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = "sku, name, brand, size, price, principal_image, other_images, status"

const findActiveQuery = `SELECT ` + productColumns + `
FROM products
WHERE sku = $1 AND status = TRUE`

const findAllActiveQuery = `SELECT ` + productColumns + `
FROM products
WHERE status = TRUE
ORDER BY sku`

const saveQuery = `INSERT INTO products (` + productColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (sku) DO UPDATE SET
    name = EXCLUDED.name,
    brand = EXCLUDED.brand,
    size = EXCLUDED.size,
    price = EXCLUDED.price,
    principal_image = EXCLUDED.principal_image,
    other_images = EXCLUDED.other_images,
    status = EXCLUDED.status,
    updated_at = now()
RETURNING ` + productColumns

const nextSKUQuery = `SELECT nextval('product_sku_seq')`

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
	}
}

// FindActive retrieves an active product by its SKU.
// Returns ErrProductNotFound if no active product exists with the given SKU.
func (p *PgStore) FindActive(ctx context.Context, sku string) (*model.Product, error) {
	product, err := scanProduct(p.db.QueryRow(ctx, findActiveQuery, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by SKU: %w", err)
	}
	return product, nil
}

// FindAllActive retrieves all active products ordered by SKU.
// It returns a slice of products, which may be empty if no products exist.
func (p *PgStore) FindAllActive(ctx context.Context) ([]model.Product, error) {
	rows, err := p.db.Query(ctx, findAllActiveQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Product, error) {
		product, err := scanProduct(row)
		if err != nil {
			return model.Product{}, err
		}
		return *product, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// Save inserts the product or overwrites the row with the same SKU.
// Returns the row as stored.
func (p *PgStore) Save(ctx context.Context, product model.Product) (*model.Product, error) {
	images := product.OtherImages
	if images == nil {
		images = []string{}
	}
	saved, err := scanProduct(p.db.QueryRow(ctx, saveQuery,
		product.SKU,
		product.Name,
		product.Brand,
		product.Size,
		product.Price,
		product.PrincipalImage,
		images,
		product.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	return saved, nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var product model.Product
	err := row.Scan(
		&product.SKU,
		&product.Name,
		&product.Brand,
		&product.Size,
		&product.Price,
		&product.PrincipalImage,
		&product.OtherImages,
		&product.Status,
	)
	if err != nil {
		return nil, err
	}
	if product.OtherImages == nil {
		product.OtherImages = []string{}
	}
	return &product, nil
}

// PgSKUGenerator implements SKUGenerator on top of a PostgreSQL sequence,
// which keeps allocation atomic across connections and service instances.
type PgSKUGenerator struct {
	db     *pgxpool.Pool
	prefix string
}

// NewPgSKUGenerator creates a generator reading from product_sku_seq.
func NewPgSKUGenerator(dbp *pgxpool.Pool, prefix string) *PgSKUGenerator {
	return &PgSKUGenerator{
		db:     dbp,
		prefix: prefix,
	}
}

// Next allocates the next SKU from the sequence.
func (g *PgSKUGenerator) Next(ctx context.Context) (string, error) {
	var n int64
	if err := g.db.QueryRow(ctx, nextSKUQuery).Scan(&n); err != nil {
		return "", fmt.Errorf("failed to allocate SKU: %w", err)
	}
	return FormatSKU(g.prefix, n), nil
}
