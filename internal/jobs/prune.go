// Package jobs holds maintenance tasks run from the CLI.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PruneResult reports what a prune pass removed.
type PruneResult struct {
	SnapshotsDeleted int64
	Cutoff           time.Time
}

// PruneSnapshots deletes price snapshots collected before the cutoff.
// The latest snapshot per (product, store) always survives, however
// old, so store coverage never regresses after a prune.
func PruneSnapshots(ctx context.Context, pool *pgxpool.Pool, olderThan time.Duration) (*PruneResult, error) {
	cutoff := time.Now().Add(-olderThan)

	result, err := pool.Exec(ctx, `
		DELETE FROM price_snapshots
		WHERE collected_at < $1
		  AND id NOT IN (
			SELECT DISTINCT ON (product_id, store_id) id
			FROM price_snapshots
			ORDER BY product_id, store_id, collected_at DESC, id DESC
		  )
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	return &PruneResult{
		SnapshotsDeleted: result.RowsAffected(),
		Cutoff:           cutoff,
	}, nil
}

// PruneOrphanProducts deletes products that no longer have any price
// snapshots, typically after a retention prune removed a discontinued
// product's entire history.
func PruneOrphanProducts(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	result, err := pool.Exec(ctx, `
		DELETE FROM products p
		WHERE NOT EXISTS (
			SELECT 1 FROM price_snapshots ps WHERE ps.product_id = p.id
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prune orphan products: %w", err)
	}
	return result.RowsAffected(), nil
}
