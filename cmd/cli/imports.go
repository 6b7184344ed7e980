package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/korpa/basket-service/internal/storage"
)

var (
	importsArchiveDir string
	importsDate       string
)

var importsCmd = &cobra.Command{
	Use:   "imports",
	Short: "List archived price file imports",
	RunE:  runImports,
}

func init() {
	importsCmd.Flags().StringVar(&importsArchiveDir, "archive-dir", "", "archive directory used during seeding")
	importsCmd.Flags().StringVar(&importsDate, "date", "", "only show imports for this date (YYYY-MM-DD)")
	importsCmd.MarkFlagRequired("archive-dir")
	rootCmd.AddCommand(importsCmd)
}

func runImports(cmd *cobra.Command, args []string) error {
	archive, err := storage.NewLocalStorage(importsArchiveDir)
	if err != nil {
		return err
	}

	prefix := "imports/"
	if importsDate != "" {
		prefix = fmt.Sprintf("imports/%s/", importsDate)
	}

	ctx := context.Background()
	keys, err := archive.List(ctx, prefix)
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		fmt.Println("No archived imports found.")
		return nil
	}

	fmt.Printf("%-48s %8s %10s  %s\n", "KEY", "ROWS", "SNAPSHOTS", "CHECKSUM")
	for _, key := range keys {
		meta, err := archive.GetMetadata(ctx, key)
		if err != nil {
			return err
		}
		if meta == nil {
			fmt.Printf("%-48s %8s %10s  %s\n", key, "-", "-", "-")
			continue
		}
		checksum := meta.Checksum
		if len(checksum) > 12 {
			checksum = checksum[:12]
		}
		fmt.Printf("%-48s %8d %10d  %s\n", key, meta.Rows, meta.Snapshots, checksum)
	}
	return nil
}
