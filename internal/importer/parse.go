package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Import files carry a fixed header; columns may appear in any order.
const (
	colChain        = "chain"
	colStoreCode    = "store_code"
	colStoreName    = "store_name"
	colProductName  = "product_name"
	colBarcode      = "barcode"
	colUnitQuantity = "unit_quantity"
	colPrice        = "price"
	colPromoPrice   = "promo_price"
	colCollectedAt  = "collected_at"
)

// ParseXLSX parses an Excel price file into normalized rows.
func ParseXLSX(content []byte, collectedAt time.Time) (*ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet: %w", err)
	}

	return parseRows(rows, collectedAt)
}

// ParseCSV parses a CSV price file into normalized rows. The delimiter
// is detected from the header line; chains export both comma and
// semicolon variants.
func ParseCSV(content []byte, collectedAt time.Time) (*ParseResult, error) {
	content = decodeText(content)
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = detectDelimiter(content)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	return parseRows(records, collectedAt)
}

// detectDelimiter picks the separator that splits the header into more
// fields.
func detectDelimiter(content []byte) rune {
	header := content
	if idx := bytes.IndexByte(content, '\n'); idx >= 0 {
		header = content[:idx]
	}
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		return ';'
	}
	return ','
}

// parseRows maps raw rows to normalized import rows using the header.
func parseRows(rows [][]string, collectedAt time.Time) (*ParseResult, error) {
	result := &ParseResult{}

	if len(rows) == 0 {
		return result, nil
	}

	indices := make(map[string]int)
	for i, h := range rows[0] {
		indices[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colChain, colStoreCode, colProductName, colPrice} {
		if _, ok := indices[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	get := func(row []string, col string) string {
		idx, ok := indices[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	result.TotalRows = len(rows) - 1
	for i, raw := range rows[1:] {
		rowNumber := i + 2 // 1-based, after header

		if isEmptyRow(raw) {
			continue
		}

		row := Row{
			ChainSlug:    get(raw, colChain),
			StoreCode:    get(raw, colStoreCode),
			StoreName:    get(raw, colStoreName),
			ProductName:  get(raw, colProductName),
			Barcode:      NormalizeBarcode(get(raw, colBarcode)),
			UnitQuantity: get(raw, colUnitQuantity),
			Price:        get(raw, colPrice),
			PromoPrice:   get(raw, colPromoPrice),
			CollectedAt:  collectedAt,
			RowNumber:    rowNumber,
		}

		if ts := get(raw, colCollectedAt); ts != "" {
			parsed, err := parseTimestamp(ts)
			if err != nil {
				result.Errors = append(result.Errors, RowError{
					RowNumber: rowNumber,
					Message:   fmt.Sprintf("invalid collected_at %q", ts),
				})
				continue
			}
			row.CollectedAt = parsed
		}

		if row.ProductName == "" {
			result.Errors = append(result.Errors, RowError{
				RowNumber: rowNumber,
				Message:   "missing product name",
			})
			continue
		}
		if row.Price == "" {
			result.Errors = append(result.Errors, RowError{
				RowNumber: rowNumber,
				Message:   "missing price",
			})
			continue
		}

		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

// parseTimestamp accepts the formats chains actually export.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02", "02.01.2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// isEmptyRow checks if a row is empty
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
