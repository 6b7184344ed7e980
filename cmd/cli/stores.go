package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/korpa/basket-service/internal/catalog"
	"github.com/korpa/basket-service/internal/database"
)

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List active stores in the catalog",
	RunE:  runStores,
}

func init() {
	rootCmd.AddCommand(storesCmd)
}

func runStores(cmd *cobra.Command, args []string) error {
	resolver := catalog.NewPGResolver(database.Pool())
	stores, err := resolver.ListStores(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list stores: %w", err)
	}

	if len(stores) == 0 {
		fmt.Println("No active stores. Seed the catalog first.")
		return nil
	}

	fmt.Printf("%-28s %-12s %s\n", "ID", "CHAIN", "NAME")
	for _, s := range stores {
		fmt.Printf("%-28s %-12s %s\n", s.ID, s.ChainSlug, s.Name)
	}
	return nil
}
