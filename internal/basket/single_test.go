package basket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korpa/basket-service/internal/catalog"
)

var testNow = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

func offer(storeID string, cents int64) catalog.StorePrice {
	return catalog.StorePrice{
		StoreID:     storeID,
		PriceCents:  cents,
		InStock:     true,
		CollectedAt: testNow.Add(-2 * time.Hour),
	}
}

func promoOffer(storeID string, cents, promoCents int64) catalog.StorePrice {
	p := offer(storeID, cents)
	p.PromoCents = &promoCents
	return p
}

// milkBreadBook is the canonical two-product fixture: milk carried by
// both stores, bread by store-a only.
func milkBreadBook() catalog.PriceBook {
	return catalog.PriceBook{
		"milk":  {offer("store-a", 150), offer("store-b", 140)},
		"bread": {offer("store-a", 200)},
	}
}

func milkBreadStores() []catalog.StoreMeta {
	return []catalog.StoreMeta{
		{ID: "store-a", ChainSlug: "alpha", Name: "Alpha Centar"},
		{ID: "store-b", ChainSlug: "beta", Name: "Beta Market"},
	}
}

func milkBreadLines() []Line {
	return []Line{
		{ProductID: "milk", Quantity: 2},
		{ProductID: "bread", Quantity: 1},
	}
}

func TestEvaluateSingleStore(t *testing.T) {
	results := EvaluateSingleStore(milkBreadBook(), milkBreadStores(), nil, milkBreadLines(), testNow)
	require.Len(t, results, 2)

	storeA := results[0]
	assert.Equal(t, "store-a", storeA.StoreID)
	assert.Equal(t, "Alpha Centar", storeA.StoreName)
	assert.Equal(t, int64(500), storeA.TotalCents) // 2*1.50 + 2.00
	assert.Equal(t, 2, storeA.FoundItems)
	assert.Equal(t, 0, storeA.MissingItems)
	assert.True(t, storeA.FullCoverage)
	assert.Empty(t, storeA.Missing)

	storeB := results[1]
	assert.Equal(t, "store-b", storeB.StoreID)
	assert.Equal(t, int64(280), storeB.TotalCents) // 2*1.40
	assert.Equal(t, 1, storeB.FoundItems)
	assert.Equal(t, 1, storeB.MissingItems)
	assert.False(t, storeB.FullCoverage)
	require.Len(t, storeB.Missing, 1)
	assert.Equal(t, "bread", storeB.Missing[0].ProductID)
	assert.Equal(t, 1, storeB.Missing[0].Quantity)
}

func TestEvaluateSingleStoreCoverageInvariant(t *testing.T) {
	lines := []Line{
		{ProductID: "milk", Quantity: 1},
		{ProductID: "bread", Quantity: 3},
		{ProductID: "nonexistent", Quantity: 1},
	}

	results := EvaluateSingleStore(milkBreadBook(), milkBreadStores(), nil, lines, testNow)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, len(lines), r.FoundItems+r.MissingItems, "store %s", r.StoreID)
		assert.Len(t, r.Items, r.FoundItems)
		assert.Len(t, r.Missing, r.MissingItems)
	}
}

func TestEvaluateSingleStoreOmitsZeroMatchStores(t *testing.T) {
	book := catalog.PriceBook{
		"milk": {offer("store-a", 150)},
	}
	stores := append(milkBreadStores(), catalog.StoreMeta{ID: "store-c", ChainSlug: "gamma", Name: "Gamma"})

	results := EvaluateSingleStore(book, stores, nil, []Line{{ProductID: "milk", Quantity: 1}}, testNow)
	require.Len(t, results, 1)
	assert.Equal(t, "store-a", results[0].StoreID)
}

func TestEvaluateSingleStoreFilter(t *testing.T) {
	filter := catalog.NewStoreFilter([]string{"store-b"})
	results := EvaluateSingleStore(milkBreadBook(), milkBreadStores(), filter, milkBreadLines(), testNow)

	require.Len(t, results, 1)
	assert.Equal(t, "store-b", results[0].StoreID)
}

func TestEvaluateSingleStoreUsesPromoPrice(t *testing.T) {
	book := catalog.PriceBook{
		"milk": {promoOffer("store-a", 150, 120)},
	}

	results := EvaluateSingleStore(book, milkBreadStores(), nil, []Line{{ProductID: "milk", Quantity: 2}}, testNow)
	require.Len(t, results, 1)
	require.Len(t, results[0].Items, 1)

	item := results[0].Items[0]
	assert.Equal(t, int64(150), item.BaseCents)
	assert.Equal(t, int64(120), item.UnitCents)
	assert.Equal(t, int64(240), item.TotalCents)
}

func TestEvaluateSingleStoreIgnoresHigherPromo(t *testing.T) {
	book := catalog.PriceBook{
		"milk": {promoOffer("store-a", 150, 180)},
	}

	results := EvaluateSingleStore(book, milkBreadStores(), nil, []Line{{ProductID: "milk", Quantity: 1}}, testNow)
	require.Len(t, results, 1)
	assert.Equal(t, int64(150), results[0].Items[0].UnitCents)
}

func TestEvaluateSingleStoreIdempotent(t *testing.T) {
	first := EvaluateSingleStore(milkBreadBook(), milkBreadStores(), nil, milkBreadLines(), testNow)
	second := EvaluateSingleStore(milkBreadBook(), milkBreadStores(), nil, milkBreadLines(), testNow)
	assert.Equal(t, first, second)
}

func TestEvaluateSingleStoreAnnotatesAge(t *testing.T) {
	stale := offer("store-a", 150)
	stale.CollectedAt = testNow.AddDate(0, 0, -10)
	book := catalog.PriceBook{"milk": {stale}}

	results := EvaluateSingleStore(book, milkBreadStores(), nil, []Line{{ProductID: "milk", Quantity: 1}}, testNow)
	require.Len(t, results, 1)

	age := results[0].Items[0].Age
	assert.Equal(t, 10, age.Days)
	assert.True(t, age.Stale)
}
