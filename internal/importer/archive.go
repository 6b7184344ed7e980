package importer

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Archive extraction limits. Chain exports bundle at most a few dozen
// files; anything past these limits is a malformed or hostile archive.
const (
	maxArchiveFileSize  = 100 * 1024 * 1024
	maxArchiveTotalSize = 1024 * 1024 * 1024
	maxArchiveFiles     = 1000
)

var archiveSkipPatterns = []string{"__MACOSX", ".DS_Store", "Thumbs.db"}

// ParseZIP expands a ZIP archive of price files and parses every CSV
// and XLSX entry inside. Row numbers restart per entry; row errors
// carry on so one bad entry never sinks the rest of the archive.
func ParseZIP(content []byte, collectedAt time.Time) (*ParseResult, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	merged := &ParseResult{}
	var totalSize int64
	fileCount := 0

	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}

		name, err := sanitizeEntryName(file.Name)
		if err != nil {
			continue
		}
		if shouldSkipEntry(name) {
			continue
		}

		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}

		fileCount++
		if fileCount > maxArchiveFiles {
			return nil, fmt.Errorf("too many files in archive (limit: %d)", maxArchiveFiles)
		}

		data, err := readEntry(file, name)
		if err != nil {
			return nil, err
		}
		totalSize += int64(len(data))
		if totalSize > maxArchiveTotalSize {
			return nil, fmt.Errorf("archive exceeds total size limit (%d bytes)", maxArchiveTotalSize)
		}

		var result *ParseResult
		if ext == ".xlsx" {
			result, err = ParseXLSX(data, collectedAt)
		} else {
			result, err = ParseCSV(data, collectedAt)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		merged.Rows = append(merged.Rows, result.Rows...)
		merged.Errors = append(merged.Errors, result.Errors...)
		merged.TotalRows += result.TotalRows
	}

	return merged, nil
}

// readEntry reads one archive entry with the per-file limit enforced
// on actual bytes, not the declared size.
func readEntry(file *zip.File, name string) ([]byte, error) {
	if int64(file.UncompressedSize64) > maxArchiveFileSize {
		return nil, fmt.Errorf("file %s exceeds size limit (%d bytes)", name, maxArchiveFileSize)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in archive: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxArchiveFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from archive: %w", name, err)
	}
	if int64(len(data)) > maxArchiveFileSize {
		return nil, fmt.Errorf("file %s exceeds size limit (%d bytes)", name, maxArchiveFileSize)
	}
	return data, nil
}

// sanitizeEntryName flattens an entry path and rejects traversal.
func sanitizeEntryName(name string) (string, error) {
	if path.IsAbs(name) || filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute path not allowed: %s", name)
	}
	if len(name) >= 2 && name[1] == ':' {
		return "", fmt.Errorf("drive letter not allowed: %s", name)
	}

	cleaned := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	for _, part := range strings.Split(cleaned, "/") {
		if part == ".." {
			return "", fmt.Errorf("path traversal not allowed: %s", name)
		}
	}

	base := path.Base(cleaned)
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("invalid entry name: %s", name)
	}
	return base, nil
}

func shouldSkipEntry(name string) bool {
	for _, pattern := range archiveSkipPatterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}
