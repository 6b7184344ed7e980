// Package catalog provides the read-only price view the basket
// evaluators consume: for a set of products, the single most recent
// price observation per (product, store) pair.
package catalog

import (
	"context"
	"time"
)

// StorePrice is the latest resolved observation of a product's price at
// one store.
type StorePrice struct {
	StoreID     string
	PriceCents  int64
	PromoCents  *int64 // Promotional price, if any
	InStock     bool
	Anomaly     bool
	CollectedAt time.Time
}

// EffectiveCents returns the price a shopper would pay: the promo price
// when one is present and actually lower, otherwise the base price.
func (p StorePrice) EffectiveCents() int64 {
	if p.PromoCents != nil && *p.PromoCents > 0 && *p.PromoCents < p.PriceCents {
		return *p.PromoCents
	}
	return p.PriceCents
}

// PriceBook maps product IDs to their resolved per-store prices.
// Products with zero observations are simply absent.
type PriceBook map[string][]StorePrice

// StoreMeta identifies a store for display and filtering.
type StoreMeta struct {
	ID        string
	ChainSlug string
	Name      string
}

// StoreFilter restricts evaluation to a set of enabled store IDs.
// A nil filter allows every store.
type StoreFilter map[string]struct{}

// NewStoreFilter builds a filter from a list of enabled store IDs.
// An empty list yields a nil filter, meaning no restriction.
func NewStoreFilter(storeIDs []string) StoreFilter {
	if len(storeIDs) == 0 {
		return nil
	}
	f := make(StoreFilter, len(storeIDs))
	for _, id := range storeIDs {
		f[id] = struct{}{}
	}
	return f
}

// Allows reports whether a store participates in the evaluation.
func (f StoreFilter) Allows(storeID string) bool {
	if f == nil {
		return true
	}
	_, ok := f[storeID]
	return ok
}

// Resolver is the price-catalog read interface the comparison core
// depends on. Implementations must be all-or-nothing per call: a failed
// read returns an error, never a partially populated book.
type Resolver interface {
	// ResolveLatestPrices returns the most recent observation per
	// (product, store) pair for the given products. An empty input
	// yields an empty book and no error.
	ResolveLatestPrices(ctx context.Context, productIDs []string) (PriceBook, error)

	// ListStores returns metadata for all active stores.
	ListStores(ctx context.Context) ([]StoreMeta, error)

	// ResolveCatalog returns the price book for the given products
	// together with the store directory, both drawn from the same
	// underlying snapshot. Evaluations use this single call so a
	// reload between two separate reads can never pair prices with
	// stores from different snapshots.
	ResolveCatalog(ctx context.Context, productIDs []string) (PriceBook, []StoreMeta, error)
}
