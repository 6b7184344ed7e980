package catalog

import (
	"sort"

	"github.com/korpa/basket-service/internal/database"
)

// ReduceLatest collapses raw snapshot history into a PriceBook holding
// exactly one observation per (product, store) pair: the one with the
// greatest collected_at, ties broken by the highest snapshot ID. The
// rule is deliberately a named reducer rather than a byproduct of map
// insertion order, and it never averages or sums observations.
func ReduceLatest(snapshots []database.PriceSnapshot) PriceBook {
	type key struct {
		productID string
		storeID   string
	}

	latest := make(map[key]database.PriceSnapshot)
	for _, s := range snapshots {
		k := key{s.ProductID, s.StoreID}
		cur, ok := latest[k]
		if !ok || newer(s, cur) {
			latest[k] = s
		}
	}

	book := make(PriceBook)
	for k, s := range latest {
		book[k.productID] = append(book[k.productID], StorePrice{
			StoreID:     s.StoreID,
			PriceCents:  s.PriceCents,
			PromoCents:  s.PromoCents,
			InStock:     s.InStock,
			Anomaly:     s.IsAnomaly,
			CollectedAt: s.CollectedAt,
		})
	}

	// Stable output order for deterministic downstream tie-breaks.
	for _, offers := range book {
		sort.Slice(offers, func(i, j int) bool {
			return offers[i].StoreID < offers[j].StoreID
		})
	}

	return book
}

// newer reports whether a should replace b as the latest observation.
func newer(a, b database.PriceSnapshot) bool {
	if !a.CollectedAt.Equal(b.CollectedAt) {
		return a.CollectedAt.After(b.CollectedAt)
	}
	return a.ID > b.ID
}
