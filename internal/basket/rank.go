package basket

import (
	"sort"

	"github.com/korpa/basket-service/internal/catalog"
)

// Rank partitions single-store results into full and partial coverage
// buckets and orders each for display.
//
// Full-coverage stores sort by total ascending: the cheapest store that
// has everything wins. Partial stores sort by found items descending
// first and total ascending second — a store missing one item at 20 is
// a better suggestion than a store missing three at 18. Store ID is the
// final tie-break in both buckets so ranking is idempotent.
//
// Every missing line in a partial result gets the cheapest alternative
// among the stores in the price book, excluding the store itself. The
// book passed here has already been reduced to the enabled stores, so a
// filtered-out store can never surface as an alternative.
func Rank(results []*ScenarioResult, book catalog.PriceBook, stores []catalog.StoreMeta, filter catalog.StoreFilter) Ranked {
	var ranked Ranked
	for _, r := range results {
		if r.FullCoverage {
			ranked.Full = append(ranked.Full, r)
		} else {
			ranked.Partial = append(ranked.Partial, r)
		}
	}

	sort.Slice(ranked.Full, func(i, j int) bool {
		a, b := ranked.Full[i], ranked.Full[j]
		if a.TotalCents != b.TotalCents {
			return a.TotalCents < b.TotalCents
		}
		return a.StoreID < b.StoreID
	})

	sort.Slice(ranked.Partial, func(i, j int) bool {
		a, b := ranked.Partial[i], ranked.Partial[j]
		if a.FoundItems != b.FoundItems {
			return a.FoundItems > b.FoundItems
		}
		if a.TotalCents != b.TotalCents {
			return a.TotalCents < b.TotalCents
		}
		return a.StoreID < b.StoreID
	})

	names := storeNames(stores)
	for _, r := range ranked.Partial {
		attachAlternatives(r, book, names, filter)
	}

	return ranked
}

// attachAlternatives fills in, for each missing line, the cheapest
// enabled store other than the result's own that carries the product.
// Lines no other store carries keep a nil alternative.
func attachAlternatives(r *ScenarioResult, book catalog.PriceBook, names map[string]string, filter catalog.StoreFilter) {
	for i := range r.Missing {
		line := &r.Missing[i]

		var best *catalog.StorePrice
		for _, offer := range book[line.ProductID] {
			if offer.StoreID == r.StoreID || !filter.Allows(offer.StoreID) {
				continue
			}
			offer := offer
			switch {
			case best == nil:
				best = &offer
			case offer.EffectiveCents() < best.EffectiveCents():
				best = &offer
			case offer.EffectiveCents() == best.EffectiveCents() && offer.StoreID < best.StoreID:
				best = &offer
			}
		}

		if best != nil {
			line.Alternative = &Alternative{
				StoreID:   best.StoreID,
				StoreName: names[best.StoreID],
				UnitCents: best.EffectiveCents(),
			}
		}
	}
}
