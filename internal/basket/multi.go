package basket

import (
	"time"

	"github.com/korpa/basket-service/internal/catalog"
	"github.com/korpa/basket-service/internal/freshness"
)

// EvaluateMixAndMatch prices each basket line independently at its
// cheapest enabled store. The result is the theoretical floor for the
// basket: no single checkout, each line carries its own store
// attribution. Ties on the minimum price go to the lowest store ID so
// repeated evaluations attribute identically.
func EvaluateMixAndMatch(book catalog.PriceBook, filter catalog.StoreFilter, lines []Line, now time.Time) *ScenarioResult {
	result := &ScenarioResult{
		StoreName: MixAndMatchName,
		Items:     make([]LineItem, 0, len(lines)),
	}

	for _, line := range lines {
		best, ok := cheapestOffer(book[line.ProductID], filter)
		if !ok {
			result.MissingItems++
			result.Missing = append(result.Missing, MissingLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			})
			continue
		}

		result.FoundItems++
		unit := best.EffectiveCents()
		result.Items = append(result.Items, LineItem{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			StoreID:    best.StoreID,
			BaseCents:  best.PriceCents,
			PromoCents: best.PromoCents,
			UnitCents:  unit,
			TotalCents: unit * int64(line.Quantity),
			Age:        freshness.AgeOf(now, best.CollectedAt),
			Anomaly:    best.Anomaly,
		})
	}

	for _, item := range result.Items {
		result.TotalCents += item.TotalCents
	}
	result.FullCoverage = result.MissingItems == 0

	return result
}

// cheapestOffer selects the minimum effective price among enabled
// stores. Equal minimums go to the lowest store ID, independent of
// input order.
func cheapestOffer(offers []catalog.StorePrice, filter catalog.StoreFilter) (catalog.StorePrice, bool) {
	var best catalog.StorePrice
	found := false
	for _, offer := range offers {
		if !filter.Allows(offer.StoreID) {
			continue
		}
		switch {
		case !found:
			best = offer
			found = true
		case offer.EffectiveCents() < best.EffectiveCents():
			best = offer
		case offer.EffectiveCents() == best.EffectiveCents() && offer.StoreID < best.StoreID:
			best = offer
		}
	}
	return best, found
}
