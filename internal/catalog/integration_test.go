package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupIntegrationTestDB starts a throwaway Postgres container and
// applies the catalog schema. Callers skip when Docker is unavailable.
func setupIntegrationTestDB(ctx context.Context, t *testing.T) (*pgxpool.Pool, func(), error) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, nil, err
	}

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		container.Terminate(ctx)
		return nil, nil, err
	}

	if err := runTestMigrations(ctx, pool); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}
	return pool, cleanup, nil
}

// runTestMigrations sets up the minimal catalog schema for testing.
func runTestMigrations(ctx context.Context, db *pgxpool.Pool) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chains (
		slug TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS stores (
		id TEXT PRIMARY KEY,
		chain_slug TEXT NOT NULL REFERENCES chains(slug) ON DELETE CASCADE,
		external_id TEXT,
		name TEXT NOT NULL,
		region TEXT,
		active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		barcode TEXT UNIQUE,
		normalized_name TEXT,
		unit_quantity TEXT,
		unit_value DOUBLE PRECISION,
		unit TEXT,
		image_url TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS price_snapshots (
		id BIGSERIAL PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
		price_cents BIGINT NOT NULL,
		promo_cents BIGINT,
		in_stock BOOLEAN NOT NULL DEFAULT true,
		is_anomaly BOOLEAN NOT NULL DEFAULT false,
		collected_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS price_snapshots_latest_idx
		ON price_snapshots(product_id, store_id, collected_at DESC, id DESC);
	CREATE INDEX IF NOT EXISTS stores_chain_slug_idx ON stores(chain_slug);
	CREATE INDEX IF NOT EXISTS products_normalized_name_idx ON products(normalized_name);
	`

	_, err := db.Exec(ctx, schema)
	return err
}

func seedStore(ctx context.Context, t *testing.T, db *pgxpool.Pool, id, chainSlug, name string, active bool) {
	t.Helper()
	_, err := db.Exec(ctx, `
		INSERT INTO chains (slug, name) VALUES ($1, $1)
		ON CONFLICT (slug) DO NOTHING
	`, chainSlug)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `
		INSERT INTO stores (id, chain_slug, external_id, name, active)
		VALUES ($1, $2, $1, $3, $4)
	`, id, chainSlug, name, active)
	require.NoError(t, err)
}

func seedProduct(ctx context.Context, t *testing.T, db *pgxpool.Pool, id, name string) {
	t.Helper()
	_, err := db.Exec(ctx, `
		INSERT INTO products (id, name, normalized_name) VALUES ($1, $2, lower($2))
	`, id, name)
	require.NoError(t, err)
}

func seedSnapshot(ctx context.Context, t *testing.T, db *pgxpool.Pool, productID, storeID string, priceCents int64, collectedAt time.Time) {
	t.Helper()
	_, err := db.Exec(ctx, `
		INSERT INTO price_snapshots (product_id, store_id, price_cents, collected_at)
		VALUES ($1, $2, $3, $4)
	`, productID, storeID, priceCents, collectedAt)
	require.NoError(t, err)
}

func TestPGResolverLatestObservationWins(t *testing.T) {
	ctx := context.Background()
	db, cleanup, err := setupIntegrationTestDB(ctx, t)
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}
	defer cleanup()

	seedStore(ctx, t, db, "str-a", "alpha", "Alpha Centar", true)
	seedProduct(ctx, t, db, "prd-milk", "Milk 1L")

	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	seedSnapshot(ctx, t, db, "prd-milk", "str-a", 150, base)
	seedSnapshot(ctx, t, db, "prd-milk", "str-a", 140, base.Add(24*time.Hour))
	seedSnapshot(ctx, t, db, "prd-milk", "str-a", 160, base.Add(-24*time.Hour))

	resolver := NewPGResolver(db)
	book, err := resolver.ResolveLatestPrices(ctx, []string{"prd-milk"})
	require.NoError(t, err)

	require.Len(t, book["prd-milk"], 1)
	assert.Equal(t, int64(140), book["prd-milk"][0].PriceCents, "newest observation should win")
}

func TestPGResolverTieBreaksByHighestID(t *testing.T) {
	ctx := context.Background()
	db, cleanup, err := setupIntegrationTestDB(ctx, t)
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}
	defer cleanup()

	seedStore(ctx, t, db, "str-a", "alpha", "Alpha Centar", true)
	seedProduct(ctx, t, db, "prd-milk", "Milk 1L")

	// Same collected_at; the later insert gets the higher serial id.
	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	seedSnapshot(ctx, t, db, "prd-milk", "str-a", 150, at)
	seedSnapshot(ctx, t, db, "prd-milk", "str-a", 145, at)

	resolver := NewPGResolver(db)
	book, err := resolver.ResolveLatestPrices(ctx, []string{"prd-milk"})
	require.NoError(t, err)

	require.Len(t, book["prd-milk"], 1)
	assert.Equal(t, int64(145), book["prd-milk"][0].PriceCents)
}

func TestPGResolverExcludesInactiveStores(t *testing.T) {
	ctx := context.Background()
	db, cleanup, err := setupIntegrationTestDB(ctx, t)
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}
	defer cleanup()

	seedStore(ctx, t, db, "str-a", "alpha", "Alpha Centar", true)
	seedStore(ctx, t, db, "str-b", "beta", "Beta Market", false)
	seedProduct(ctx, t, db, "prd-milk", "Milk 1L")

	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	seedSnapshot(ctx, t, db, "prd-milk", "str-a", 150, at)
	seedSnapshot(ctx, t, db, "prd-milk", "str-b", 120, at)

	resolver := NewPGResolver(db)
	book, err := resolver.ResolveLatestPrices(ctx, []string{"prd-milk"})
	require.NoError(t, err)

	require.Len(t, book["prd-milk"], 1)
	assert.Equal(t, "str-a", book["prd-milk"][0].StoreID)
}

func TestPGResolverEmptyInput(t *testing.T) {
	ctx := context.Background()
	db, cleanup, err := setupIntegrationTestDB(ctx, t)
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}
	defer cleanup()

	resolver := NewPGResolver(db)
	book, err := resolver.ResolveLatestPrices(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, book)
}

func TestPGResolverListStores(t *testing.T) {
	ctx := context.Background()
	db, cleanup, err := setupIntegrationTestDB(ctx, t)
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}
	defer cleanup()

	seedStore(ctx, t, db, "str-c", "beta", "Beta Market", true)
	seedStore(ctx, t, db, "str-a", "alpha", "Alpha Centar", true)
	seedStore(ctx, t, db, "str-b", "alpha", "Alpha Zapad", false)

	resolver := NewPGResolver(db)
	stores, err := resolver.ListStores(ctx)
	require.NoError(t, err)

	require.Len(t, stores, 2, "inactive stores should be excluded")
	assert.Equal(t, "str-a", stores[0].ID, "stores should sort by chain then name")
	assert.Equal(t, "str-c", stores[1].ID)
}

func TestPGResolverRecentPrices(t *testing.T) {
	ctx := context.Background()
	db, cleanup, err := setupIntegrationTestDB(ctx, t)
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}
	defer cleanup()

	seedStore(ctx, t, db, "str-a", "alpha", "Alpha Centar", true)
	seedProduct(ctx, t, db, "prd-milk", "Milk 1L")

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, cents := range []int64{100, 110, 120, 130} {
		seedSnapshot(ctx, t, db, "prd-milk", "str-a", cents, base.Add(time.Duration(i)*24*time.Hour))
	}

	resolver := NewPGResolver(db)
	prices, err := resolver.RecentPrices(ctx, "prd-milk", "str-a", 3)
	require.NoError(t, err)

	assert.Equal(t, []int64{130, 120, 110}, prices, "history should be newest first, capped at limit")
}

func TestCachedResolverServesFromWarmSnapshot(t *testing.T) {
	ctx := context.Background()
	db, cleanup, err := setupIntegrationTestDB(ctx, t)
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}
	defer cleanup()

	seedStore(ctx, t, db, "str-a", "alpha", "Alpha Centar", true)
	seedProduct(ctx, t, db, "prd-milk", "Milk 1L")
	seedSnapshot(ctx, t, db, "prd-milk", "str-a", 150, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))

	cache := NewCachedResolver(NewPGResolver(db), DefaultCacheConfig())
	require.NoError(t, cache.Warmup(ctx))

	book, err := cache.ResolveLatestPrices(ctx, []string{"prd-milk"})
	require.NoError(t, err)
	require.Len(t, book["prd-milk"], 1)
	assert.Equal(t, int64(150), book["prd-milk"][0].PriceCents)

	stores, err := cache.ListStores(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "Alpha Centar", stores[0].Name)
}
