// Package basket implements the comparison core: given a basket of
// desired products and the resolved price catalog, it evaluates every
// store on its own, the cheapest cross-store assignment, and a ranked
// comparison of both.
package basket

import (
	"fmt"

	"github.com/korpa/basket-service/internal/freshness"
)

// Line is one desired product with a quantity. Lines are request
// scoped; the service never persists them.
type Line struct {
	ProductID string
	Quantity  int
}

// Request is a basket evaluation request. EnabledStoreIDs restricts the
// evaluation to a subset of stores; empty means all active stores.
type Request struct {
	Lines           []Line
	EnabledStoreIDs []string
}

// MixAndMatchName is the display name of the cross-store scenario. It
// is not a purchasable checkout; UIs must label it distinctly.
const MixAndMatchName = "Mix & Match"

// LineItem is one priced basket line within a scenario.
type LineItem struct {
	ProductID  string
	Quantity   int
	StoreID    string // The store this line is priced at
	BaseCents  int64  // Base price per unit
	PromoCents *int64 // Promotional price per unit, if any
	UnitCents  int64  // Effective price per unit
	TotalCents int64  // UnitCents * Quantity
	Age        freshness.Age
	Anomaly    bool
}

// Alternative points at the cheapest other store carrying a product a
// store is missing. Only stores inside the active filter qualify.
type Alternative struct {
	StoreID   string
	StoreName string
	UnitCents int64
}

// MissingLine is a basket line a scenario could not price.
type MissingLine struct {
	ProductID   string
	Quantity    int
	Alternative *Alternative // nil when no enabled store carries it
}

// ScenarioResult is the outcome of pricing the basket under one
// scenario: a single store, or the mix & match assignment.
type ScenarioResult struct {
	StoreID      string // Empty for mix & match
	StoreName    string
	TotalCents   int64
	FoundItems   int
	MissingItems int
	FullCoverage bool
	Items        []LineItem
	Missing      []MissingLine
}

// Ranked buckets single-store results by coverage: stores that can
// fulfil the whole basket, then the rest.
type Ranked struct {
	Full    []*ScenarioResult
	Partial []*ScenarioResult
}

// Comparison is the complete evaluation output.
type Comparison struct {
	SingleStore []*ScenarioResult
	MultiStore  *ScenarioResult
	Ranked      Ranked
}

// Config contains evaluation limits.
type Config struct {
	// MaxBasketItems is the maximum number of lines allowed per request.
	MaxBasketItems int
}

// DefaultConfig returns the default evaluation limits.
func DefaultConfig() *Config {
	return &Config{MaxBasketItems: 100}
}

// Validate checks the hard input-validation rules. Soft conditions
// (unknown product IDs, products no store carries) are not errors; they
// surface as missing lines.
func (r *Request) Validate(maxItems int) error {
	if len(r.Lines) < 1 {
		return ErrInvalidRequest{Field: "lines", Reason: "must have at least one item"}
	}
	if len(r.Lines) > maxItems {
		return ErrInvalidRequest{Field: "lines", Reason: "exceeds maximum allowed"}
	}
	for i, line := range r.Lines {
		if line.ProductID == "" {
			return ErrInvalidRequest{Field: "lines", Reason: fmt.Sprintf("item at index %d has empty productId", i)}
		}
		if line.Quantity <= 0 {
			return ErrInvalidRequest{Field: "lines", Reason: fmt.Sprintf("item at index %d has invalid quantity", i)}
		}
	}
	return nil
}

// ErrInvalidRequest is returned when an evaluation request fails
// validation. It never reaches the evaluators.
type ErrInvalidRequest struct {
	Field  string
	Reason string
}

func (e ErrInvalidRequest) Error() string {
	return e.Field + ": " + e.Reason
}
