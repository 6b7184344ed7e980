package basket

import (
	"sort"
	"time"

	"github.com/korpa/basket-service/internal/catalog"
	"github.com/korpa/basket-service/internal/freshness"
)

// storeIndex is the per-store view of the price book: storeID ->
// productID -> resolved price.
type storeIndex map[string]map[string]catalog.StorePrice

// buildStoreIndex inverts a price book into per-store lookups,
// dropping stores outside the filter so nothing downstream can reach
// them.
func buildStoreIndex(book catalog.PriceBook, filter catalog.StoreFilter) storeIndex {
	idx := make(storeIndex)
	for productID, offers := range book {
		for _, offer := range offers {
			if !filter.Allows(offer.StoreID) {
				continue
			}
			byProduct, ok := idx[offer.StoreID]
			if !ok {
				byProduct = make(map[string]catalog.StorePrice)
				idx[offer.StoreID] = byProduct
			}
			byProduct[productID] = offer
		}
	}
	return idx
}

// EvaluateSingleStore prices the whole basket at every store that
// carries at least one of its lines. Stores with zero matches are
// omitted from the output. Totals are summed in minor units, so there
// is no per-line rounding to compound.
func EvaluateSingleStore(book catalog.PriceBook, stores []catalog.StoreMeta, filter catalog.StoreFilter, lines []Line, now time.Time) []*ScenarioResult {
	idx := buildStoreIndex(book, filter)
	names := storeNames(stores)

	results := make([]*ScenarioResult, 0, len(idx))
	for storeID, prices := range idx {
		result := &ScenarioResult{
			StoreID:   storeID,
			StoreName: names[storeID],
			Items:     make([]LineItem, 0, len(lines)),
		}

		for _, line := range lines {
			offer, ok := prices[line.ProductID]
			if !ok {
				result.MissingItems++
				result.Missing = append(result.Missing, MissingLine{
					ProductID: line.ProductID,
					Quantity:  line.Quantity,
				})
				continue
			}

			result.FoundItems++
			unit := offer.EffectiveCents()
			result.Items = append(result.Items, LineItem{
				ProductID:  line.ProductID,
				Quantity:   line.Quantity,
				StoreID:    storeID,
				BaseCents:  offer.PriceCents,
				PromoCents: offer.PromoCents,
				UnitCents:  unit,
				TotalCents: unit * int64(line.Quantity),
				Age:        freshness.AgeOf(now, offer.CollectedAt),
				Anomaly:    offer.Anomaly,
			})
		}

		for _, item := range result.Items {
			result.TotalCents += item.TotalCents
		}
		result.FullCoverage = result.MissingItems == 0
		results = append(results, result)
	}

	// Deterministic output order regardless of map iteration.
	sort.Slice(results, func(i, j int) bool {
		return results[i].StoreID < results[j].StoreID
	})

	return results
}

// storeNames maps store IDs to display names.
func storeNames(stores []catalog.StoreMeta) map[string]string {
	names := make(map[string]string, len(stores))
	for _, s := range stores {
		names[s.ID] = s.Name
	}
	return names
}
