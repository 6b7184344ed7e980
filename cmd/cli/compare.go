package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/korpa/basket-service/internal/basket"
	"github.com/korpa/basket-service/internal/catalog"
	"github.com/korpa/basket-service/internal/database"
	"github.com/korpa/basket-service/internal/money"
)

var compareStoreIDs []string

var compareCmd = &cobra.Command{
	Use:   "compare <productId[:quantity]> [productId[:quantity]...]",
	Short: "Compare a basket of products across stores",
	Long: `Evaluates a basket against the latest catalog prices and prints every
single-store total, the cheapest cross-store assignment and the ranked
comparison. Quantities default to 1.

Example:
  basket-service compare prd_abc:2 prd_def`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringSliceVar(&compareStoreIDs, "stores", nil, "restrict the comparison to these store IDs")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	lines, err := parseBasketArgs(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	resolver := catalog.NewPGResolver(database.Pool())
	evaluator := basket.NewEvaluator(resolver, nil)

	cmp, err := evaluator.Evaluate(ctx, &basket.Request{
		Lines:           lines,
		EnabledStoreIDs: compareStoreIDs,
	})
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	printComparison(cmp)
	return nil
}

// parseBasketArgs parses productId[:quantity] arguments.
func parseBasketArgs(args []string) ([]basket.Line, error) {
	lines := make([]basket.Line, 0, len(args))
	for _, arg := range args {
		productID := arg
		quantity := 1

		if idx := strings.LastIndex(arg, ":"); idx >= 0 {
			productID = arg[:idx]
			q, err := strconv.Atoi(arg[idx+1:])
			if err != nil || q < 1 {
				return nil, fmt.Errorf("invalid quantity in %q", arg)
			}
			quantity = q
		}

		if productID == "" {
			return nil, fmt.Errorf("empty product ID in %q", arg)
		}
		lines = append(lines, basket.Line{ProductID: productID, Quantity: quantity})
	}
	return lines, nil
}

func printComparison(cmp *basket.Comparison) {
	fmt.Println("Single-store totals:")
	for _, r := range cmp.SingleStore {
		printScenario(r)
	}

	fmt.Println()
	fmt.Printf("%s: %s", cmp.MultiStore.StoreName, money.FormatDecimal(cmp.MultiStore.TotalCents))
	if !cmp.MultiStore.FullCoverage {
		fmt.Printf(" (%d items unavailable everywhere)", cmp.MultiStore.MissingItems)
	}
	fmt.Println()
	for _, item := range cmp.MultiStore.Items {
		fmt.Printf("  %s x%d @ %s  -> %s\n", item.ProductID, item.Quantity, item.StoreID, money.FormatDecimal(item.TotalCents))
	}

	fmt.Println()
	if len(cmp.Ranked.Full) > 0 {
		best := cmp.Ranked.Full[0]
		fmt.Printf("Best full-coverage store: %s (%s) at %s\n", best.StoreName, best.StoreID, money.FormatDecimal(best.TotalCents))
	} else {
		fmt.Println("No single store carries the whole basket.")
	}
}

func printScenario(r *basket.ScenarioResult) {
	coverage := "full"
	if !r.FullCoverage {
		coverage = fmt.Sprintf("%d/%d items", r.FoundItems, r.FoundItems+r.MissingItems)
	}
	fmt.Printf("  %-30s %10s  (%s)\n", r.StoreName, money.FormatDecimal(r.TotalCents), coverage)

	for _, m := range r.Missing {
		if m.Alternative != nil {
			fmt.Printf("    missing %s, cheapest at %s for %s\n",
				m.ProductID, m.Alternative.StoreName, money.FormatDecimal(m.Alternative.UnitCents))
		} else {
			fmt.Printf("    missing %s, no enabled store carries it\n", m.ProductID)
		}
	}
}
