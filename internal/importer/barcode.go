package importer

import "regexp"

var (
	nonDigitRe       = regexp.MustCompile(`[^0-9]`)
	placeholderRe    = regexp.MustCompile(`^0+$`)
	variableWeightRe = regexp.MustCompile(`^2[0-9]`) // EAN-13 prefix 20-29
)

// NormalizeBarcode handles UPC-A vs EAN-13, leading zeros and invalid
// codes. Returns empty string for placeholder or corrupt barcodes; the
// product then falls back to name identity.
func NormalizeBarcode(barcode string) string {
	bc := nonDigitRe.ReplaceAllString(barcode, "")
	if bc == "" {
		return ""
	}

	// Placeholder barcodes (all zeros) carry no identity.
	if placeholderRe.MatchString(bc) {
		return ""
	}

	// Variable-weight item codes encode the price, not the product.
	if len(bc) == 13 && variableWeightRe.MatchString(bc) {
		return ""
	}

	// UPC-A (12 digits) -> EAN-13 (add leading 0)
	if len(bc) == 12 {
		bc = "0" + bc
	}

	// Shorter codes may be internal retailer codes; keep as-is.
	if len(bc) != 13 {
		return bc
	}

	if !validEAN13CheckDigit(bc) {
		return ""
	}
	return bc
}

func validEAN13CheckDigit(bc string) bool {
	if len(bc) != 13 {
		return false
	}
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(bc[i] - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	check := (10 - (sum % 10)) % 10
	return int(bc[12]-'0') == check
}
