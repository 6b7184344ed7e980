package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/korpa/basket-service/internal/basket"
	"github.com/korpa/basket-service/internal/catalog"
	"github.com/korpa/basket-service/internal/database"
	"github.com/korpa/basket-service/internal/importer"
)

// ============================================================================
// Basket Comparison Endpoints
// ============================================================================

// EvaluateLine represents one desired product in an evaluation request
type EvaluateLine struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// EvaluateRequest represents a basket evaluation request by product ID
type EvaluateRequest struct {
	Lines           []EvaluateLine `json:"lines" binding:"required,min=1,max=100"`
	EnabledStoreIDs []string       `json:"enabledStoreIds,omitempty"`
}

// CompareItem represents one basket item identified by barcode
type CompareItem struct {
	EAN      string `json:"ean" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// CompareRequest represents a basket comparison request by barcode
type CompareRequest struct {
	Items    []CompareItem `json:"items" binding:"required,min=1,max=100"`
	StoreIDs []string      `json:"storeIds,omitempty"`
}

// CompareResponse is the wire envelope for barcode comparisons: the
// ranked scenario list under data, with barcodes that resolved to no
// known product reported alongside it
type CompareResponse struct {
	Success       bool               `json:"success"`
	Data          []ScenarioResponse `json:"data"`
	UnmatchedEANs []string           `json:"unmatchedEans,omitempty"`
}

// Global comparison instances (initialized by the application)
var (
	basketEvaluator *basket.Evaluator
	catalogCache    *catalog.Cache
)

// InitComparison initializes the evaluator and cache instances.
// This should be called during application startup.
func InitComparison(evaluator *basket.Evaluator, cache *catalog.Cache) {
	basketEvaluator = evaluator
	catalogCache = cache
}

// GetCatalogCache returns the catalog cache instance
func GetCatalogCache() *catalog.Cache {
	return catalogCache
}

// EvaluateBasket handles basket evaluation by product ID
// POST /v1/basket/evaluate
//
//	@Summary	Evaluate a basket across stores
//	@Tags		basket
//	@Accept		json
//	@Produce	json
//	@Param		request	body		EvaluateRequest	true	"Basket to evaluate"
//	@Success	200		{object}	map[string]interface{}
//	@Failure	400		{object}	map[string]interface{}
//	@Router		/v1/basket/evaluate [post]
func EvaluateBasket(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if basketEvaluator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Evaluator not initialized"})
		return
	}

	if catalogCache != nil && !catalogCache.IsHealthy(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Catalog unavailable"})
		return
	}

	lines := make([]basket.Line, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = basket.Line{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	cmp, err := basketEvaluator.Evaluate(c.Request.Context(), &basket.Request{
		Lines:           lines,
		EnabledStoreIDs: req.EnabledStoreIDs,
	})
	if err != nil {
		var invalid basket.ErrInvalidRequest
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": invalid.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Evaluation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": toComparison(cmp)})
}

// CompareBasket handles basket comparison by barcode
// POST /v1/basket/compare
//
// Barcodes that resolve to no product are reported back, not treated
// as errors; a shopper's basket should never fail because one item is
// unknown.
//
//	@Summary	Compare a basket of barcodes across stores
//	@Tags		basket
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CompareRequest	true	"Basket to compare"
//	@Success	200		{object}	CompareResponse
//	@Failure	400		{object}	map[string]interface{}
//	@Router		/v1/basket/compare [post]
func CompareBasket(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if basketEvaluator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Evaluator not initialized"})
		return
	}

	if catalogCache != nil && !catalogCache.IsHealthy(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Catalog unavailable"})
		return
	}

	ctx := c.Request.Context()

	// Catalog barcodes are stored normalized, so incoming EANs get the
	// same treatment before lookup.
	normalized := make([]string, len(req.Items))
	eans := make([]string, 0, len(req.Items))
	for i, item := range req.Items {
		normalized[i] = importer.NormalizeBarcode(item.EAN)
		if normalized[i] != "" {
			eans = append(eans, normalized[i])
		}
	}

	byEAN, err := resolveBarcodes(c, eans)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to resolve barcodes"})
		return
	}

	var lines []basket.Line
	var unmatched []string
	for i, item := range req.Items {
		productID, ok := byEAN[normalized[i]]
		if normalized[i] == "" || !ok {
			unmatched = append(unmatched, item.EAN)
			continue
		}
		lines = append(lines, basket.Line{ProductID: productID, Quantity: item.Quantity})
	}

	if len(lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "No items matched a known product",
			"data":    gin.H{"unmatchedEans": unmatched},
		})
		return
	}

	cmp, err := basketEvaluator.Evaluate(ctx, &basket.Request{
		Lines:           lines,
		EnabledStoreIDs: req.StoreIDs,
	})
	if err != nil {
		var invalid basket.ErrInvalidRequest
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": invalid.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Comparison failed"})
		return
	}

	c.JSON(http.StatusOK, CompareResponse{
		Success:       true,
		Data:          toScenarioList(cmp),
		UnmatchedEANs: unmatched,
	})
}

// resolveBarcodes maps barcodes to product IDs
func resolveBarcodes(c *gin.Context, eans []string) (map[string]string, error) {
	pool := database.Pool()
	rows, err := pool.Query(c.Request.Context(), `
		SELECT barcode, id
		FROM products
		WHERE barcode = ANY($1)
	`, eans)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byEAN := make(map[string]string, len(eans))
	for rows.Next() {
		var ean, id string
		if err := rows.Scan(&ean, &id); err != nil {
			return nil, err
		}
		byEAN[ean] = id
	}
	return byEAN, rows.Err()
}

// CatalogRefresh forces a catalog snapshot reload
// POST /internal/catalog/refresh
func CatalogRefresh(c *gin.Context) {
	if catalogCache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Cache not initialized"})
		return
	}

	if err := catalogCache.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh catalog: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Catalog refreshed successfully",
	})
}

// CatalogHealth reports catalog snapshot freshness
// GET /internal/catalog/health
func CatalogHealth(c *gin.Context) {
	if catalogCache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Cache not initialized",
		})
		return
	}

	freshness := catalogCache.GetFreshness()

	status := "ok"
	if !catalogCache.IsHealthy(c.Request.Context()) {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"loadedAt": freshness.LoadedAt,
		"isStale":  freshness.IsStale,
		"products": freshness.Products,
		"stores":   freshness.Stores,
	})
}
