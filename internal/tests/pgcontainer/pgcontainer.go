// Package pgcontainer starts a disposable PostgreSQL for integration tests and applies the schema.
package pgcontainer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/productcatalog/internal/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const image = "postgres:17.5-alpine"

// Database is a running container with a migrated schema and an open pool.
type Database struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// Start runs the container, waits for it, connects and migrates.
// The caller must call Terminate even when Start returns an error.
func Start(ctx context.Context, logger *slog.Logger) (*Database, error) {
	db := &Database{}
	var err error

	db.Container, err = postgres.Run(ctx,
		image,
		postgres.WithDatabase("products"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		// Wait for a specific log message indicating the database service is ready.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		return db, fmt.Errorf("failed to run PostgreSQL container: %w", err)
	}

	db.ConnStr, err = db.Container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return db, fmt.Errorf("failed to get connection string: %w", err)
	}

	db.Pool, err = pgxpool.New(ctx, db.ConnStr)
	if err != nil {
		return db, fmt.Errorf("failed to create pgxpool: %w", err)
	}

	for i := range 10 {
		logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		if err = db.Pool.Ping(ctx); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return db, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
	}

	if err = migrations.Up(db.ConnStr); err != nil {
		return db, err
	}
	logger.Info("Migrations applied")
	return db, nil
}

// Reset removes all rows and restarts the SKU sequence.
func (db *Database) Reset(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, "TRUNCATE TABLE products"); err != nil {
		return fmt.Errorf("failed to truncate products table: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, "ALTER SEQUENCE product_sku_seq RESTART WITH 1"); err != nil {
		return fmt.Errorf("failed to restart sku sequence: %w", err)
	}
	return nil
}

// Terminate closes the pool and stops the container.
func (db *Database) Terminate(ctx context.Context, logger *slog.Logger) {
	if db == nil {
		return
	}
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		if err := db.Container.Terminate(ctx); err != nil {
			logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}
