package handlers

import (
	"github.com/korpa/basket-service/internal/basket"
	"github.com/korpa/basket-service/internal/freshness"
	"github.com/korpa/basket-service/internal/money"
)

// ============================================================================
// Basket Comparison Response Types
// ============================================================================

// PriceAge describes how old a price observation is
type PriceAge struct {
	Days  int    `json:"days"`
	Label string `json:"label"`
	Stale bool   `json:"stale"`
}

// BasketLineItem represents one priced line in a scenario
type BasketLineItem struct {
	ProductID  string   `json:"productId"`
	Quantity   int      `json:"quantity"`
	StoreID    string   `json:"storeId"`
	BasePrice  string   `json:"basePrice"`
	PromoPrice *string  `json:"promoPrice,omitempty"`
	UnitPrice  string   `json:"unitPrice"`
	LineTotal  string   `json:"lineTotal"`
	PriceAge   PriceAge `json:"priceAge"`
	Anomaly    bool     `json:"anomaly,omitempty"`
}

// AlternativeStore points at the cheapest other store carrying a missing product
type AlternativeStore struct {
	StoreID   string `json:"storeId"`
	StoreName string `json:"storeName"`
	UnitPrice string `json:"unitPrice"`
}

// MissingBasketLine represents a line a scenario could not price
type MissingBasketLine struct {
	ProductID   string            `json:"productId"`
	Quantity    int               `json:"quantity"`
	Alternative *AlternativeStore `json:"alternative,omitempty"`
}

// ScenarioResponse represents one pricing scenario in the comparison
type ScenarioResponse struct {
	StoreID      string              `json:"storeId,omitempty"`
	StoreName    string              `json:"storeName"`
	Total        string              `json:"total"`
	FoundItems   int                 `json:"foundItems"`
	MissingItems int                 `json:"missingItems"`
	FullCoverage bool                `json:"fullCoverage"`
	Items        []BasketLineItem    `json:"items"`
	Missing      []MissingBasketLine `json:"missing,omitempty"`
}

// RankingResponse buckets single-store scenarios by coverage
type RankingResponse struct {
	FullCoverage    []ScenarioResponse `json:"fullCoverage"`
	PartialCoverage []ScenarioResponse `json:"partialCoverage"`
}

// ComparisonResponse is the complete basket comparison payload
type ComparisonResponse struct {
	SingleStore []ScenarioResponse `json:"singleStore"`
	MixAndMatch ScenarioResponse   `json:"mixAndMatch"`
	Ranking     RankingResponse    `json:"ranking"`
}

func toPriceAge(age freshness.Age) PriceAge {
	return PriceAge{Days: age.Days, Label: age.Label, Stale: age.Stale}
}

func toLineItem(item basket.LineItem) BasketLineItem {
	out := BasketLineItem{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		StoreID:   item.StoreID,
		BasePrice: money.FormatDecimal(item.BaseCents),
		UnitPrice: money.FormatDecimal(item.UnitCents),
		LineTotal: money.FormatDecimal(item.TotalCents),
		PriceAge:  toPriceAge(item.Age),
		Anomaly:   item.Anomaly,
	}
	if item.PromoCents != nil {
		promo := money.FormatDecimal(*item.PromoCents)
		out.PromoPrice = &promo
	}
	return out
}

func toMissingLine(line basket.MissingLine) MissingBasketLine {
	out := MissingBasketLine{
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
	}
	if line.Alternative != nil {
		out.Alternative = &AlternativeStore{
			StoreID:   line.Alternative.StoreID,
			StoreName: line.Alternative.StoreName,
			UnitPrice: money.FormatDecimal(line.Alternative.UnitCents),
		}
	}
	return out
}

func toScenario(r *basket.ScenarioResult) ScenarioResponse {
	out := ScenarioResponse{
		StoreID:      r.StoreID,
		StoreName:    r.StoreName,
		Total:        money.FormatDecimal(r.TotalCents),
		FoundItems:   r.FoundItems,
		MissingItems: r.MissingItems,
		FullCoverage: r.FullCoverage,
		Items:        make([]BasketLineItem, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		out.Items = append(out.Items, toLineItem(item))
	}
	for _, line := range r.Missing {
		out.Missing = append(out.Missing, toMissingLine(line))
	}
	return out
}

func toScenarios(results []*basket.ScenarioResult) []ScenarioResponse {
	out := make([]ScenarioResponse, 0, len(results))
	for _, r := range results {
		out = append(out, toScenario(r))
	}
	return out
}

// toScenarioList flattens a comparison into the ranked scenario list
// served on the barcode endpoint: full-coverage stores first, then
// partial-coverage stores, then the cross-store Mix & Match scenario.
func toScenarioList(cmp *basket.Comparison) []ScenarioResponse {
	out := make([]ScenarioResponse, 0, len(cmp.SingleStore)+1)
	out = append(out, toScenarios(cmp.Ranked.Full)...)
	out = append(out, toScenarios(cmp.Ranked.Partial)...)
	out = append(out, toScenario(cmp.MultiStore))
	return out
}

func toComparison(cmp *basket.Comparison) ComparisonResponse {
	return ComparisonResponse{
		SingleStore: toScenarios(cmp.SingleStore),
		MixAndMatch: toScenario(cmp.MultiStore),
		Ranking: RankingResponse{
			FullCoverage:    toScenarios(cmp.Ranked.Full),
			PartialCoverage: toScenarios(cmp.Ranked.Partial),
		},
	}
}
