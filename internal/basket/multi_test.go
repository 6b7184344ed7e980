package basket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korpa/basket-service/internal/catalog"
)

func TestEvaluateMixAndMatch(t *testing.T) {
	result := EvaluateMixAndMatch(milkBreadBook(), nil, milkBreadLines(), testNow)

	assert.Empty(t, result.StoreID)
	assert.Equal(t, MixAndMatchName, result.StoreName)
	assert.Equal(t, int64(480), result.TotalCents) // 2*1.40 + 2.00
	assert.True(t, result.FullCoverage)
	require.Len(t, result.Items, 2)

	assert.Equal(t, "store-b", result.Items[0].StoreID)
	assert.Equal(t, "milk", result.Items[0].ProductID)
	assert.Equal(t, "store-a", result.Items[1].StoreID)
	assert.Equal(t, "bread", result.Items[1].ProductID)
}

func TestEvaluateMixAndMatchNeverExceedsBestSingleStore(t *testing.T) {
	book := milkBreadBook()
	lines := milkBreadLines()

	single := EvaluateSingleStore(book, milkBreadStores(), nil, lines, testNow)
	multi := EvaluateMixAndMatch(book, nil, lines, testNow)

	for _, r := range single {
		if r.FullCoverage {
			assert.LessOrEqual(t, multi.TotalCents, r.TotalCents, "store %s", r.StoreID)
		}
	}
}

func TestEvaluateMixAndMatchTieGoesToLowestStoreID(t *testing.T) {
	book := catalog.PriceBook{
		"milk": {offer("store-b", 140), offer("store-a", 140)},
	}

	result := EvaluateMixAndMatch(book, nil, []Line{{ProductID: "milk", Quantity: 1}}, testNow)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "store-a", result.Items[0].StoreID)
}

func TestEvaluateMixAndMatchRespectsFilter(t *testing.T) {
	filter := catalog.NewStoreFilter([]string{"store-a"})
	result := EvaluateMixAndMatch(milkBreadBook(), filter, milkBreadLines(), testNow)

	assert.Equal(t, int64(500), result.TotalCents) // store-b's cheaper milk excluded
	for _, item := range result.Items {
		assert.Equal(t, "store-a", item.StoreID)
	}
}

func TestEvaluateMixAndMatchMissingProduct(t *testing.T) {
	lines := append(milkBreadLines(), Line{ProductID: "caviar", Quantity: 1})
	result := EvaluateMixAndMatch(milkBreadBook(), nil, lines, testNow)

	assert.False(t, result.FullCoverage)
	assert.Equal(t, 2, result.FoundItems)
	assert.Equal(t, 1, result.MissingItems)
	require.Len(t, result.Missing, 1)
	assert.Equal(t, "caviar", result.Missing[0].ProductID)
	assert.Equal(t, int64(480), result.TotalCents)
}

func TestEvaluateMixAndMatchPrefersPromoPrice(t *testing.T) {
	book := catalog.PriceBook{
		"milk": {offer("store-a", 130), promoOffer("store-b", 150, 120)},
	}

	result := EvaluateMixAndMatch(book, nil, []Line{{ProductID: "milk", Quantity: 1}}, testNow)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "store-b", result.Items[0].StoreID)
	assert.Equal(t, int64(120), result.Items[0].UnitCents)
}

func TestEvaluateMixAndMatchIdempotent(t *testing.T) {
	first := EvaluateMixAndMatch(milkBreadBook(), nil, milkBreadLines(), testNow)
	second := EvaluateMixAndMatch(milkBreadBook(), nil, milkBreadLines(), testNow)
	assert.Equal(t, first, second)
}
