package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/korpa/basket-service/internal/database"
	"github.com/korpa/basket-service/internal/money"
	"github.com/korpa/basket-service/internal/units"
)

// ============================================================================
// Catalog Endpoints
// ============================================================================

// StoreResponse represents a store in the directory
type StoreResponse struct {
	ID        string `json:"id"`
	ChainSlug string `json:"chainSlug"`
	Name      string `json:"name"`
}

// ListStores returns all active stores
// GET /v1/stores
//
//	@Summary	List active stores
//	@Tags		catalog
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/v1/stores [get]
func ListStores(c *gin.Context) {
	if catalogCache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Catalog not initialized"})
		return
	}

	stores, err := catalogCache.ListStores(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to list stores"})
		return
	}

	out := make([]StoreResponse, 0, len(stores))
	for _, s := range stores {
		out = append(out, StoreResponse{ID: s.ID, ChainSlug: s.ChainSlug, Name: s.Name})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": out, "total": len(out)})
}

// SearchProductsRequest represents query parameters for product search
type SearchProductsRequest struct {
	Query string `form:"q" binding:"required,min=3"`
	Limit int    `form:"limit" binding:"min=0,max=100"`
}

// ProductSearchResult represents one product search hit
type ProductSearchResult struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Barcode       *string `json:"barcode,omitempty"`
	UnitQuantity  *string `json:"unitQuantity,omitempty"`
	ImageURL      *string `json:"imageUrl,omitempty"`
	StoreCount    int     `json:"storeCount"`
	CheapestPrice *string `json:"cheapestPrice,omitempty"`
}

// SearchProducts searches products by name
// GET /v1/products/search?q=&limit=20
// Requires minimum 3 chars for ILIKE queries to prevent full table scan.
// The query is diacritic-folded so "mlijeko" and "mlıjeko" match the
// same normalized names.
//
//	@Summary	Search products by name
//	@Tags		catalog
//	@Produce	json
//	@Param		q	query		string	true	"Search term (min 3 chars)"
//	@Success	200	{object}	map[string]interface{}
//	@Failure	400	{object}	map[string]interface{}
//	@Router		/v1/products/search [get]
func SearchProducts(c *gin.Context) {
	var req SearchProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if len(req.Query) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Query must be at least 3 characters long",
		})
		return
	}

	if req.Limit == 0 {
		req.Limit = 20
	}

	pool := database.Pool()
	ctx := c.Request.Context()

	folded := units.Fold(req.Query)
	rows, err := pool.Query(ctx, `
		SELECT id, name, barcode, unit_quantity, image_url
		FROM products
		WHERE normalized_name ILIKE $1 OR name ILIKE $2
		ORDER BY name
		LIMIT $3
	`, "%"+folded+"%", "%"+req.Query+"%", req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to search products"})
		return
	}
	defer rows.Close()

	results := []ProductSearchResult{}
	for rows.Next() {
		var p ProductSearchResult
		if err := rows.Scan(&p.ID, &p.Name, &p.Barcode, &p.UnitQuantity, &p.ImageURL); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to scan product"})
			return
		}
		results = append(results, p)
	}
	if rows.Err() != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Error iterating products"})
		return
	}

	annotatePrices(c, results)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
		"total":   len(results),
		"query":   req.Query,
	})
}

// annotatePrices fills store counts and cheapest effective prices from
// the cached catalog snapshot. Search still works when the cache is
// cold; hits just come back without price context.
func annotatePrices(c *gin.Context, results []ProductSearchResult) {
	if catalogCache == nil {
		return
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}

	book, err := catalogCache.ResolveLatestPrices(c.Request.Context(), ids)
	if err != nil {
		return
	}

	for i := range results {
		offers := book[results[i].ID]
		if len(offers) == 0 {
			continue
		}
		results[i].StoreCount = len(offers)

		cheapest := offers[0].EffectiveCents()
		for _, offer := range offers[1:] {
			if offer.EffectiveCents() < cheapest {
				cheapest = offer.EffectiveCents()
			}
		}
		price := money.FormatDecimal(cheapest)
		results[i].CheapestPrice = &price
	}
}
