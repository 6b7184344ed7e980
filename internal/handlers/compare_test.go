package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korpa/basket-service/internal/basket"
	"github.com/korpa/basket-service/internal/catalog"
)

type staticResolver struct {
	book   catalog.PriceBook
	stores []catalog.StoreMeta
}

func (r *staticResolver) ResolveLatestPrices(_ context.Context, productIDs []string) (catalog.PriceBook, error) {
	book := make(catalog.PriceBook, len(productIDs))
	for _, id := range productIDs {
		if offers, ok := r.book[id]; ok {
			book[id] = offers
		}
	}
	return book, nil
}

func (r *staticResolver) ListStores(_ context.Context) ([]catalog.StoreMeta, error) {
	return r.stores, nil
}

func (r *staticResolver) ResolveCatalog(ctx context.Context, productIDs []string) (catalog.PriceBook, []catalog.StoreMeta, error) {
	book, err := r.ResolveLatestPrices(ctx, productIDs)
	if err != nil {
		return nil, nil, err
	}
	return book, r.stores, nil
}

func fixtureResolver() *staticResolver {
	promo := int64(140)
	return &staticResolver{
		book: catalog.PriceBook{
			"milk": {
				{StoreID: "store-a", PriceCents: 150, InStock: true, CollectedAt: time.Now().Add(-time.Hour)},
				{StoreID: "store-b", PriceCents: 160, PromoCents: &promo, InStock: true, CollectedAt: time.Now().Add(-time.Hour)},
			},
			"bread": {
				{StoreID: "store-a", PriceCents: 200, InStock: true, CollectedAt: time.Now().Add(-time.Hour)},
			},
		},
		stores: []catalog.StoreMeta{
			{ID: "store-a", ChainSlug: "alpha", Name: "Alpha Centar"},
			{ID: "store-b", ChainSlug: "beta", Name: "Beta Market"},
		},
	}
}

func setupEvaluateRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	InitComparison(basket.NewEvaluator(fixtureResolver(), nil), nil)
	t.Cleanup(func() { InitComparison(nil, nil) })

	router := gin.New()
	router.POST("/v1/basket/evaluate", EvaluateBasket)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEvaluateBasketEndpoint(t *testing.T) {
	router := setupEvaluateRouter(t)

	w := postJSON(t, router, "/v1/basket/evaluate", EvaluateRequest{
		Lines: []EvaluateLine{
			{ProductID: "milk", Quantity: 2},
			{ProductID: "bread", Quantity: 1},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    ComparisonResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	require.Len(t, resp.Data.SingleStore, 2)
	storeA := resp.Data.SingleStore[0]
	assert.Equal(t, "store-a", storeA.StoreID)
	assert.Equal(t, "5.00", storeA.Total)
	assert.True(t, storeA.FullCoverage)

	storeB := resp.Data.SingleStore[1]
	assert.Equal(t, "2.80", storeB.Total) // 2 * promo 1.40
	assert.False(t, storeB.FullCoverage)
	require.Len(t, storeB.Items, 1)
	require.NotNil(t, storeB.Items[0].PromoPrice)
	assert.Equal(t, "1.40", *storeB.Items[0].PromoPrice)

	assert.Equal(t, "Mix & Match", resp.Data.MixAndMatch.StoreName)
	assert.Empty(t, resp.Data.MixAndMatch.StoreID)
	assert.Equal(t, "4.80", resp.Data.MixAndMatch.Total)

	require.Len(t, resp.Data.Ranking.FullCoverage, 1)
	assert.Equal(t, "store-a", resp.Data.Ranking.FullCoverage[0].StoreID)
	require.Len(t, resp.Data.Ranking.PartialCoverage, 1)
	partial := resp.Data.Ranking.PartialCoverage[0]
	require.Len(t, partial.Missing, 1)
	require.NotNil(t, partial.Missing[0].Alternative)
	assert.Equal(t, "store-a", partial.Missing[0].Alternative.StoreID)
	assert.Equal(t, "2.00", partial.Missing[0].Alternative.UnitPrice)
}

// TestCompareResponseWireShape verifies the comparison envelope: data
// is the ranked scenario list (full coverage, then partial, then
// Mix & Match), with unmatched barcodes as a sibling field rather than
// nested inside it.
func TestCompareResponseWireShape(t *testing.T) {
	evaluator := basket.NewEvaluator(fixtureResolver(), nil)

	cmp, err := evaluator.Evaluate(context.Background(), &basket.Request{
		Lines: []basket.Line{
			{ProductID: "milk", Quantity: 2},
			{ProductID: "bread", Quantity: 1},
		},
	})
	require.NoError(t, err)

	payload, err := json.Marshal(CompareResponse{
		Success:       true,
		Data:          toScenarioList(cmp),
		UnmatchedEANs: []string{"0000000000000"},
	})
	require.NoError(t, err)

	var wire struct {
		Success       bool               `json:"success"`
		Data          []ScenarioResponse `json:"data"`
		UnmatchedEANs []string           `json:"unmatchedEans"`
	}
	require.NoError(t, json.Unmarshal(payload, &wire))
	require.True(t, wire.Success)

	require.Len(t, wire.Data, 3)
	assert.Equal(t, "store-a", wire.Data[0].StoreID)
	assert.True(t, wire.Data[0].FullCoverage)
	assert.Equal(t, "5.00", wire.Data[0].Total)
	assert.Equal(t, "store-b", wire.Data[1].StoreID)
	assert.False(t, wire.Data[1].FullCoverage)
	assert.Equal(t, "Mix & Match", wire.Data[2].StoreName)
	assert.Empty(t, wire.Data[2].StoreID)
	assert.Equal(t, "4.80", wire.Data[2].Total)

	assert.Equal(t, []string{"0000000000000"}, wire.UnmatchedEANs)
}

func TestEvaluateBasketEndpointStoreFilter(t *testing.T) {
	router := setupEvaluateRouter(t)

	w := postJSON(t, router, "/v1/basket/evaluate", EvaluateRequest{
		Lines:           []EvaluateLine{{ProductID: "milk", Quantity: 1}},
		EnabledStoreIDs: []string{"store-a"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ComparisonResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Data.SingleStore, 1)
	assert.Equal(t, "store-a", resp.Data.SingleStore[0].StoreID)
	for _, item := range resp.Data.MixAndMatch.Items {
		assert.Equal(t, "store-a", item.StoreID)
	}
}

func TestEvaluateBasketEndpointValidation(t *testing.T) {
	router := setupEvaluateRouter(t)

	tests := []struct {
		name string
		body any
	}{
		{"empty body", gin.H{}},
		{"no lines", EvaluateRequest{Lines: []EvaluateLine{}}},
		{"zero quantity", gin.H{"lines": []gin.H{{"productId": "milk", "quantity": 0}}}},
		{"missing product id", gin.H{"lines": []gin.H{{"quantity": 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/v1/basket/evaluate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestEvaluateBasketEndpointUninitialized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	InitComparison(nil, nil)

	router := gin.New()
	router.POST("/v1/basket/evaluate", EvaluateBasket)

	w := postJSON(t, router, "/v1/basket/evaluate", EvaluateRequest{
		Lines: []EvaluateLine{{ProductID: "milk", Quantity: 1}},
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
