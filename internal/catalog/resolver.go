package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGResolver resolves latest prices directly from Postgres. Each call
// runs in a single read-only transaction so the book is a consistent
// snapshot even while ingestion appends new observations.
type PGResolver struct {
	db *pgxpool.Pool
}

// NewPGResolver creates a resolver backed by the given pool.
func NewPGResolver(db *pgxpool.Pool) *PGResolver {
	return &PGResolver{db: db}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// latestPricesSQL is the SQL form of the keep-latest reducer: the
// DISTINCT ON plus (collected_at DESC, id DESC) ordering yields one row
// per (product, store), newest observation, ties by highest snapshot id.
const latestPricesSQL = `
	SELECT DISTINCT ON (ps.product_id, ps.store_id)
		ps.product_id, ps.store_id,
		ps.price_cents, ps.promo_cents,
		ps.in_stock, ps.is_anomaly, ps.collected_at
	FROM price_snapshots ps
	JOIN stores s ON s.id = ps.store_id
	WHERE s.active
`

const latestPricesOrder = ` ORDER BY ps.product_id, ps.store_id, ps.collected_at DESC, ps.id DESC`

func queryLatestPrices(ctx context.Context, q querier, productIDs []string) (PriceBook, error) {
	sql := latestPricesSQL
	var args []any
	if productIDs != nil {
		sql += ` AND ps.product_id = ANY($1)`
		args = append(args, productIDs)
	}
	rows, err := q.Query(ctx, sql+latestPricesOrder, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest prices: %w", err)
	}
	defer rows.Close()

	book := make(PriceBook)
	for rows.Next() {
		var productID string
		var p StorePrice
		if err := rows.Scan(&productID, &p.StoreID, &p.PriceCents, &p.PromoCents,
			&p.InStock, &p.Anomaly, &p.CollectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		book[productID] = append(book[productID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}
	return book, nil
}

func queryStores(ctx context.Context, q querier) ([]StoreMeta, error) {
	rows, err := q.Query(ctx, `
		SELECT id, chain_slug, name
		FROM stores
		WHERE active
		ORDER BY chain_slug, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	var stores []StoreMeta
	for rows.Next() {
		var s StoreMeta
		if err := rows.Scan(&s.ID, &s.ChainSlug, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// ResolveLatestPrices implements Resolver.
func (r *PGResolver) ResolveLatestPrices(ctx context.Context, productIDs []string) (PriceBook, error) {
	if len(productIDs) == 0 {
		return PriceBook{}, nil
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	book, err := queryLatestPrices(ctx, tx, productIDs)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return book, nil
}

// resolveAllLatestPrices loads the latest observation for every
// (product, store) pair across the whole catalog. Used by the snapshot
// cache loader; request paths go through ResolveLatestPrices.
func (r *PGResolver) resolveAllLatestPrices(ctx context.Context) (PriceBook, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	book, err := queryLatestPrices(ctx, tx, nil)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return book, nil
}

// ListStores implements Resolver.
func (r *PGResolver) ListStores(ctx context.Context) ([]StoreMeta, error) {
	return queryStores(ctx, r.db)
}

// ResolveCatalog implements Resolver. Both reads run inside one
// read-only transaction, so the book and the store directory describe
// the same database snapshot.
func (r *PGResolver) ResolveCatalog(ctx context.Context, productIDs []string) (PriceBook, []StoreMeta, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stores, err := queryStores(ctx, tx)
	if err != nil {
		return nil, nil, err
	}

	book := PriceBook{}
	if len(productIDs) > 0 {
		book, err = queryLatestPrices(ctx, tx, productIDs)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return book, stores, nil
}

// RecentPrices returns up to limit historical prices for a (product,
// store) pair, newest first. Used by the importer to judge anomalies
// before inserting a new snapshot.
func (r *PGResolver) RecentPrices(ctx context.Context, productID, storeID string, limit int) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT price_cents
		FROM price_snapshots
		WHERE product_id = $1 AND store_id = $2
		ORDER BY collected_at DESC, id DESC
		LIMIT $3
	`, productID, storeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var prices []int64
	for rows.Next() {
		var p int64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}
