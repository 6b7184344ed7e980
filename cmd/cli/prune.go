package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/korpa/basket-service/internal/database"
	"github.com/korpa/basket-service/internal/jobs"
)

var (
	pruneDays     int
	pruneProducts bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune old price snapshots from the catalog",
	Long: `Deletes price snapshots collected before the retention window. The
latest snapshot per (product, store) always survives, so comparisons
keep their coverage after a prune.`,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().IntVar(&pruneDays, "days", 90, "retention window in days")
	pruneCmd.Flags().BoolVar(&pruneProducts, "orphan-products", false, "also delete products with no snapshots left")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	if pruneDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	ctx := context.Background()
	result, err := jobs.PruneSnapshots(ctx, database.Pool(), time.Duration(pruneDays)*24*time.Hour)
	if err != nil {
		return err
	}

	logger.Info().
		Int64("snapshots_deleted", result.SnapshotsDeleted).
		Time("cutoff", result.Cutoff).
		Msg("Prune completed")

	if pruneProducts {
		deleted, err := jobs.PruneOrphanProducts(ctx, database.Pool())
		if err != nil {
			return err
		}
		logger.Info().Int64("products_deleted", deleted).Msg("Orphan products removed")
	}

	return nil
}
