package database

import (
	"time"
)

// Chain represents a retail brand that may operate multiple stores.
type Chain struct {
	Slug      string    `json:"slug"` // konzum, lidl, spar, etc.
	Name      string    `json:"name"` // Human-readable name
	Website   *string   `json:"website"`
	LogoURL   *string   `json:"logo_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Store represents a retail location or online channel of a chain.
// (chain_slug, external_id) is unique.
type Store struct {
	ID         string    `json:"id"`          // CUID2
	ChainSlug  string    `json:"chain_slug"`  // FK to chains.slug
	ExternalID string    `json:"external_id"` // Chain-scoped store code
	Name       string    `json:"name"`
	Region     *string   `json:"region"` // Optional region / locations served
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Product is the store-independent identity of a sellable item.
// Barcode, when present, is globally unique. Products are created and
// refreshed by ingestion; the comparison core never deletes them.
type Product struct {
	ID             string    `json:"id"`      // CUID2
	Name           string    `json:"name"`    // Display name
	Barcode        *string   `json:"barcode"` // EAN-13, optional
	NormalizedName *string   `json:"normalized_name"`
	UnitQuantity   *string   `json:"unit_quantity"` // Free text: "500ml", "2kg"
	UnitValue      *float64  `json:"unit_value"`    // Parsed quantity value
	Unit           *string   `json:"unit"`          // ml, l, g, kg, item
	ImageURL       *string   `json:"image_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PriceSnapshot is one observation of a product's price at a store at a
// point in time. Snapshots are append-only; history accumulates and the
// comparison core always resolves the latest per (product, store).
type PriceSnapshot struct {
	ID          int64     `json:"id"`
	ProductID   string    `json:"product_id"` // FK to products.id
	StoreID     string    `json:"store_id"`   // FK to stores.id
	PriceCents  int64     `json:"price_cents"`
	PromoCents  *int64    `json:"promo_cents"` // Promotional price, if any
	InStock     bool      `json:"in_stock"`
	IsAnomaly   bool      `json:"is_anomaly"` // Advisory flag, never a rejection
	CollectedAt time.Time `json:"collected_at"`
	CreatedAt   time.Time `json:"created_at"`
}
