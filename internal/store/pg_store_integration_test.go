package store

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/abgdnv/productcatalog/internal/migrations"
	"github.com/abgdnv/productcatalog/internal/tests/pgcontainer"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const skipIntegrationTests = "PRODUCT_SVC_SKIP_INTEGRATION_TESTS"

// PgStoreSuite runs the store contract and the SKU sequence against a real PostgreSQL.
type PgStoreSuite struct {
	suite.Suite
	db     *pgcontainer.Database
	store  *PgStore
	logger *slog.Logger
	ctx    context.Context
}

func (s *PgStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var err error
	s.db, err = pgcontainer.Start(s.ctx, s.logger)
	require.NoError(s.T(), err, "Failed to start PostgreSQL")

	s.store = NewPgStore(s.db.Pool)
	s.logger.Info("Initialization complete for PgStoreSuite")
}

func (s *PgStoreSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	s.db.Terminate(s.ctx, s.logger)
}

// SetupTest prepares the database for each test by truncating the products table.
func (s *PgStoreSuite) SetupTest() {
	require.NoError(s.T(), s.db.Reset(s.ctx))
}

func TestPgStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PgStoreSuite))
}

func (s *PgStoreSuite) TestContract() {
	for _, tc := range storeContract {
		s.Run(tc.name, func() {
			s.Require().NoError(s.db.Reset(s.ctx))
			tc.run(s.T(), s.ctx, s.store)
		})
	}
}

func (s *PgStoreSuite) TestSoftDeletedRowIsKept() {
	// given
	p := sampleProduct("FAL_000001")
	mustSave(s.T(), s.ctx, s.store, p)
	p.Status = false

	// when
	mustSave(s.T(), s.ctx, s.store, p)

	// then
	var status bool
	err := s.db.Pool.QueryRow(s.ctx, "SELECT status FROM products WHERE sku = $1", "FAL_000001").Scan(&status)
	s.Require().NoError(err, "soft-deleted row should still exist")
	s.False(status)
}

func (s *PgStoreSuite) TestSKUGenerator_Sequential() {
	g := NewPgSKUGenerator(s.db.Pool, DefaultSKUPrefix)

	first, err := g.Next(s.ctx)
	s.Require().NoError(err)
	second, err := g.Next(s.ctx)
	s.Require().NoError(err)

	s.Equal("FAL_000001", first)
	s.Equal("FAL_000002", second)
}

func (s *PgStoreSuite) TestSKUGenerator_ConcurrentUnique() {
	g := NewPgSKUGenerator(s.db.Pool, DefaultSKUPrefix)
	const n = 50

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, n)
		wg   sync.WaitGroup
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sku, err := g.Next(s.ctx)
			s.NoError(err)
			mu.Lock()
			seen[sku] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Len(seen, n)
}

func (s *PgStoreSuite) TestResilientStore_PassesThrough() {
	rs := NewResilientStore(s.store, testBreakerConfig())

	saved, err := rs.Save(s.ctx, sampleProduct("FAL_000005"))
	s.Require().NoError(err)

	found, err := rs.FindActive(s.ctx, saved.SKU)
	s.Require().NoError(err)
	s.Equal(*saved, *found)
}

func (s *PgStoreSuite) TestMigrations_DownAndUpAgain() {
	// given
	mustSave(s.T(), s.ctx, s.store, sampleProduct("FAL_000001"))

	// when
	s.Require().NoError(migrations.Down(s.db.ConnStr))
	_, err := s.store.FindAllActive(s.ctx)
	s.Require().Error(err, "table must be gone after down")
	s.Require().NoError(migrations.Up(s.db.ConnStr))
	s.Require().NoError(migrations.Up(s.db.ConnStr), "up on a current schema is a no-op")

	// then
	list, err := s.store.FindAllActive(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)
	sku, err := NewPgSKUGenerator(s.db.Pool, DefaultSKUPrefix).Next(s.ctx)
	s.Require().NoError(err)
	s.Equal("FAL_000001", sku)
}
