// Package money converts between the wire representation of monetary
// values (decimal strings, two fraction digits) and the internal
// representation (int64 minor units). All arithmetic in the service is
// done in minor units so that summing line totals never accumulates
// floating-point error; rounding happens exactly twice, once at parse
// and once at format.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDecimal parses a decimal string such as "12.34" into minor
// currency units (1234). At most two fraction digits are kept; a third
// digit rounds half-up. Negative amounts are rejected because prices
// are never negative.
func ParseDecimal(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative amount %q", s)
	}

	whole := s
	frac := ""
	if i := strings.IndexAny(s, ".,"); i >= 0 {
		whole, frac = s[:i], s[i+1:]
		if strings.ContainsAny(frac, ".,") {
			return 0, fmt.Errorf("malformed amount %q", s)
		}
	}
	if whole == "" {
		whole = "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q: %w", s, err)
	}

	cents := w * 100
	switch {
	case frac == "":
	case len(frac) <= 2:
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed amount %q: %w", s, err)
		}
		if len(frac) == 1 {
			f *= 10
		}
		cents += f
	default:
		f, err := strconv.ParseInt(frac[:3], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed amount %q: %w", s, err)
		}
		// Half-up on the third fraction digit.
		cents += (f + 5) / 10
	}

	return cents, nil
}

// FormatDecimal renders minor units as a decimal string with exactly
// two fraction digits, e.g. 1234 -> "12.34". This is the only place
// amounts are converted back for the transport boundary.
func FormatDecimal(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
