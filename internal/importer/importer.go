package importer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/korpa/basket-service/internal/catalog"
	"github.com/korpa/basket-service/internal/chains"
	"github.com/korpa/basket-service/internal/freshness"
	"github.com/korpa/basket-service/internal/money"
	"github.com/korpa/basket-service/internal/pkg/cuid2"
	"github.com/korpa/basket-service/internal/units"
)

// Importer writes parsed price rows into the catalog tables.
type Importer struct {
	pool     *pgxpool.Pool
	resolver *catalog.PGResolver
	logger   zerolog.Logger

	storeIDs   map[string]string // chain/code -> store id
	productIDs map[string]string // barcode or folded name -> product id
}

// New creates an importer over the given pool.
func New(pool *pgxpool.Pool) *Importer {
	return &Importer{
		pool:       pool,
		resolver:   catalog.NewPGResolver(pool),
		logger:     log.With().Str("component", "importer").Logger(),
		storeIDs:   make(map[string]string),
		productIDs: make(map[string]string),
	}
}

// Import persists the parsed rows. Each row upserts its chain, store
// and product, then appends one price snapshot. Anomaly detection runs
// against the history already in the database, before the new snapshot
// is inserted, so a flagged price still enters the catalog.
func (im *Importer) Import(ctx context.Context, rows []Row) (*ImportStats, error) {
	stats := &ImportStats{}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		priceCents, err := money.ParseDecimal(row.Price)
		if err != nil {
			im.logger.Warn().Int("row", row.RowNumber).Str("price", row.Price).Msg("Skipping row with invalid price")
			stats.Skipped++
			continue
		}

		var promoCents *int64
		if row.PromoPrice != "" {
			promo, err := money.ParseDecimal(row.PromoPrice)
			if err != nil {
				im.logger.Warn().Int("row", row.RowNumber).Str("promo", row.PromoPrice).Msg("Ignoring invalid promo price")
			} else {
				promoCents = &promo
			}
		}

		storeID, created, err := im.ensureStore(ctx, row)
		if err != nil {
			return stats, fmt.Errorf("row %d: %w", row.RowNumber, err)
		}
		if created {
			stats.Stores++
		}

		productID, created, err := im.ensureProduct(ctx, row)
		if err != nil {
			return stats, fmt.Errorf("row %d: %w", row.RowNumber, err)
		}
		if created {
			stats.Products++
		}

		history, err := im.resolver.RecentPrices(ctx, productID, storeID, freshness.AnomalyHistorySize)
		if err != nil {
			return stats, fmt.Errorf("row %d: %w", row.RowNumber, err)
		}
		anomaly := freshness.DetectAnomaly(priceCents, history)
		if anomaly {
			stats.Anomalies++
			im.logger.Info().
				Str("product_id", productID).
				Str("store_id", storeID).
				Int64("price_cents", priceCents).
				Msg("Price flagged as anomaly")
		}

		_, err = im.pool.Exec(ctx, `
			INSERT INTO price_snapshots (product_id, store_id, price_cents, promo_cents, in_stock, is_anomaly, collected_at, created_at)
			VALUES ($1, $2, $3, $4, true, $5, $6, NOW())
		`, productID, storeID, priceCents, promoCents, anomaly, row.CollectedAt)
		if err != nil {
			return stats, fmt.Errorf("row %d: failed to insert snapshot: %w", row.RowNumber, err)
		}
		stats.Snapshots++
	}

	im.logger.Info().
		Int("snapshots", stats.Snapshots).
		Int("new_stores", stats.Stores).
		Int("new_products", stats.Products).
		Int("anomalies", stats.Anomalies).
		Int("skipped", stats.Skipped).
		Msg("Import completed")

	return stats, nil
}

// ensureStore resolves or creates the store a row belongs to.
func (im *Importer) ensureStore(ctx context.Context, row Row) (string, bool, error) {
	key := row.ChainSlug + "/" + row.StoreCode
	if id, ok := im.storeIDs[key]; ok {
		return id, false, nil
	}

	if _, err := im.pool.Exec(ctx, `
		INSERT INTO chains (slug, name, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (slug) DO NOTHING
	`, row.ChainSlug, chains.DisplayName(row.ChainSlug)); err != nil {
		return "", false, fmt.Errorf("failed to upsert chain: %w", err)
	}

	var id string
	err := im.pool.QueryRow(ctx, `
		SELECT id FROM stores WHERE chain_slug = $1 AND external_id = $2
	`, row.ChainSlug, row.StoreCode).Scan(&id)
	if err == nil {
		im.storeIDs[key] = id
		return id, false, nil
	}
	if err != pgx.ErrNoRows {
		return "", false, fmt.Errorf("failed to look up store: %w", err)
	}

	id = cuid2.GeneratePrefixedId("str", cuid2.PrefixedIdOptions{TimeSortable: true})
	name := row.StoreName
	if name == "" {
		name = fmt.Sprintf("%s %s", chains.DisplayName(row.ChainSlug), row.StoreCode)
	}

	if _, err := im.pool.Exec(ctx, `
		INSERT INTO stores (id, chain_slug, external_id, name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, true, NOW(), NOW())
	`, id, row.ChainSlug, row.StoreCode, name); err != nil {
		return "", false, fmt.Errorf("failed to insert store: %w", err)
	}

	im.storeIDs[key] = id
	return id, true, nil
}

// ensureProduct resolves or creates the product a row refers to.
// Barcode is the identity when present; otherwise the folded name.
func (im *Importer) ensureProduct(ctx context.Context, row Row) (string, bool, error) {
	folded := units.Fold(row.ProductName)
	key := row.Barcode
	if key == "" {
		key = folded
	}
	if id, ok := im.productIDs[key]; ok {
		return id, false, nil
	}

	var id string
	var err error
	if row.Barcode != "" {
		err = im.pool.QueryRow(ctx, `SELECT id FROM products WHERE barcode = $1`, row.Barcode).Scan(&id)
	} else {
		err = im.pool.QueryRow(ctx, `SELECT id FROM products WHERE barcode IS NULL AND normalized_name = $1`, folded).Scan(&id)
	}
	if err == nil {
		im.productIDs[key] = id
		return id, false, nil
	}
	if err != pgx.ErrNoRows {
		return "", false, fmt.Errorf("failed to look up product: %w", err)
	}

	id = cuid2.GeneratePrefixedId("prd", cuid2.PrefixedIdOptions{TimeSortable: true})

	var barcode *string
	if row.Barcode != "" {
		barcode = &row.Barcode
	}
	var unitQuantity, unit *string
	var unitValue *float64
	if row.UnitQuantity != "" {
		unitQuantity = &row.UnitQuantity
		if q, ok := units.ParseQuantity(row.UnitQuantity); ok {
			normalized := q.Normalize()
			unitValue = &normalized.Value
			u := string(normalized.Unit)
			unit = &u
		}
	}

	if _, err := im.pool.Exec(ctx, `
		INSERT INTO products (id, name, barcode, normalized_name, unit_quantity, unit_value, unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`, id, row.ProductName, barcode, folded, unitQuantity, unitValue, unit); err != nil {
		return "", false, fmt.Errorf("failed to insert product: %w", err)
	}

	im.productIDs[key] = id
	return id, true, nil
}
