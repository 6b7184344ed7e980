// Package importer seeds the price catalog from chain price files.
// Each file row becomes a product, a store and an append-only price
// snapshot; repeated imports never overwrite history.
package importer

import "time"

// Row is one normalized price observation from an import file.
type Row struct {
	ChainSlug    string
	StoreCode    string
	StoreName    string
	ProductName  string
	Barcode      string
	UnitQuantity string
	Price        string // Raw decimal string, parsed at import time
	PromoPrice   string
	CollectedAt  time.Time
	RowNumber    int
}

// RowError describes a file row that could not be parsed.
type RowError struct {
	RowNumber int
	Message   string
}

// ParseResult holds the rows and errors from parsing one file.
type ParseResult struct {
	Rows      []Row
	Errors    []RowError
	TotalRows int
}

// ImportStats summarizes one import run.
type ImportStats struct {
	Stores    int
	Products  int
	Snapshots int
	Anomalies int
	Skipped   int
}
