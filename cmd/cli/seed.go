package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/korpa/basket-service/internal/database"
	"github.com/korpa/basket-service/internal/importer"
	"github.com/korpa/basket-service/internal/storage"
)

var (
	seedCollectedAt string
	seedArchiveDir  string
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.xlsx|file.csv|file.zip> [more files...]",
	Short: "Seed the price catalog from chain price files",
	Long: `Parses chain price files and appends their observations to the catalog.
Products and stores are created on first sight; prices always append as
new snapshots, never overwriting history. ZIP archives are expanded and
every CSV or XLSX entry inside is imported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedCollectedAt, "collected-at", "", "observation time for rows without one (RFC 3339, default now)")
	seedCmd.Flags().StringVar(&seedArchiveDir, "archive-dir", "", "keep a raw copy of each imported file under this directory")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	collectedAt := time.Now()
	if seedCollectedAt != "" {
		parsed, err := time.Parse(time.RFC3339, seedCollectedAt)
		if err != nil {
			return fmt.Errorf("invalid --collected-at: %w", err)
		}
		collectedAt = parsed
	}

	var archive *storage.LocalStorage
	if seedArchiveDir != "" {
		var err error
		archive, err = storage.NewLocalStorage(seedArchiveDir)
		if err != nil {
			return err
		}
	}

	ctx := context.Background()
	im := importer.New(database.Pool())

	for _, path := range args {
		if err := seedFile(ctx, im, archive, path, collectedAt); err != nil {
			return err
		}
	}
	return nil
}

func seedFile(ctx context.Context, im *importer.Importer, archive *storage.LocalStorage, path string, collectedAt time.Time) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var result *importer.ParseResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		result, err = importer.ParseXLSX(content, collectedAt)
	case ".csv":
		result, err = importer.ParseCSV(content, collectedAt)
	case ".zip":
		result, err = importer.ParseZIP(content, collectedAt)
	default:
		return fmt.Errorf("unsupported file type %q, expected .xlsx, .csv or .zip", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for _, rowErr := range result.Errors {
		logger.Warn().
			Str("file", path).
			Int("row", rowErr.RowNumber).
			Msg(rowErr.Message)
	}

	stats, err := im.Import(ctx, result.Rows)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", path, err)
	}

	logger.Info().
		Str("file", path).
		Int("rows", result.TotalRows).
		Int("snapshots", stats.Snapshots).
		Int("new_stores", stats.Stores).
		Int("new_products", stats.Products).
		Int("anomalies", stats.Anomalies).
		Msg("Seeded price file")

	if archive != nil {
		if err := archiveFile(ctx, archive, path, content, collectedAt, result, stats); err != nil {
			logger.Warn().Str("file", path).Err(err).Msg("Failed to archive imported file")
		}
	}

	return nil
}

// archiveFile keeps a raw copy of an imported file so snapshots can be
// traced back to their source.
func archiveFile(ctx context.Context, archive *storage.LocalStorage, path string, content []byte, collectedAt time.Time, result *importer.ParseResult, stats *importer.ImportStats) error {
	key := storage.BuildImportKey(collectedAt, filepath.Base(path))

	exists, err := archive.Exists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		logger.Warn().Str("key", key).Msg("Archive already holds a file with this name for this date, overwriting")
	}

	return archive.Put(ctx, key, content, &storage.Metadata{
		OriginalName: filepath.Base(path),
		Checksum:     storage.ComputeChecksum(content),
		ImportedAt:   time.Now(),
		Rows:         result.TotalRows,
		Snapshots:    stats.Snapshots,
	})
}
