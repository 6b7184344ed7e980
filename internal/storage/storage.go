// Package storage keeps raw copies of ingested price files so every
// snapshot in the catalog can be traced back to the file it came from.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Metadata is stored alongside each archived file.
type Metadata struct {
	OriginalName string    `json:"originalName,omitempty"`
	ContentType  string    `json:"contentType,omitempty"`
	Checksum     string    `json:"checksum,omitempty"`
	ImportedAt   time.Time `json:"importedAt,omitempty"`
	Rows         int       `json:"rows,omitempty"`
	Snapshots    int       `json:"snapshots,omitempty"`
}

// Storage archives ingested files. Implementations can be local
// filesystem, S3, GCS, etc.
type Storage interface {
	Put(ctx context.Context, key string, content []byte, metadata *Metadata) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// ComputeChecksum computes the SHA256 checksum for content.
func ComputeChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// BuildImportKey builds the archive key for an ingested price file.
func BuildImportKey(date time.Time, filename string) string {
	return fmt.Sprintf("imports/%s/%s", date.Format("2006-01-02"), filename)
}
