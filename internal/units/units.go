// Package units parses free-text package quantities ("500ml", "2kg",
// "1.5 lt") and derives comparable unit prices. Weight and volume are
// normalized to their base units (kg, l) so that a 500 g and a 1 kg
// pack of the same product compare on equal footing.
package units

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Unit is a canonical unit of measure.
type Unit string

const (
	UnitML   Unit = "ml"
	UnitL    Unit = "l"
	UnitG    Unit = "g"
	UnitKG   Unit = "kg"
	UnitItem Unit = "item"
)

// Quantity is a parsed package quantity.
type Quantity struct {
	Value float64
	Unit  Unit
}

// unitPattern pairs a canonical unit with the regexp that recognizes it.
// The list is ordered and the first match wins; every pattern is fully
// anchored so ordering only decides ambiguous spellings.
type unitPattern struct {
	unit Unit
	re   *regexp.Regexp
}

var unitPatterns = []unitPattern{
	{UnitML, regexp.MustCompile(`^([0-9]+(?:[.,][0-9]+)?)\s*ml$`)},
	{UnitL, regexp.MustCompile(`^([0-9]+(?:[.,][0-9]+)?)\s*(?:l|lt|ltr|lit)$`)},
	{UnitG, regexp.MustCompile(`^([0-9]+(?:[.,][0-9]+)?)\s*(?:g|gr)$`)},
	{UnitKG, regexp.MustCompile(`^([0-9]+(?:[.,][0-9]+)?)\s*kg$`)},
	{UnitItem, regexp.MustCompile(`^([0-9]+(?:[.,][0-9]+)?)\s*(?:kom|pcs|pc|x|item)?$`)},
}

// ParseQuantity parses a free-text quantity string into a Quantity.
// Returns ok=false for strings that match no pattern; that is expected
// for unstructured catalog data and is not an error.
func ParseQuantity(s string) (Quantity, bool) {
	s = Fold(s)
	if s == "" {
		return Quantity{}, false
	}

	for _, p := range unitPatterns {
		m := p.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			return Quantity{}, false
		}
		return Quantity{Value: v, Unit: p.unit}, true
	}

	return Quantity{}, false
}

// Normalize converts a quantity to its base unit: g -> kg and ml -> l.
// kg, l and item quantities pass through unchanged.
func (q Quantity) Normalize() Quantity {
	switch q.Unit {
	case UnitG:
		return Quantity{Value: q.Value / 1000, Unit: UnitKG}
	case UnitML:
		return Quantity{Value: q.Value / 1000, Unit: UnitL}
	default:
		return q
	}
}

// UnitPriceCents computes the price per base unit (per kg, per l, per
// item) in minor currency units, rounded half-up to whole cents.
// Returns ok=false for zero or missing quantities instead of dividing
// by zero.
func UnitPriceCents(priceCents int64, q Quantity) (int64, bool) {
	n := q.Normalize()
	if n.Value <= 0 {
		return 0, false
	}
	return int64(math.Round(float64(priceCents) / n.Value)), true
}

var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases, trims and strips diacritics so that "1,5 Lit" and
// "1.5 lit" parse identically regardless of source-catalog spelling.
func Fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	out, _, err := transform.String(foldTransform, s)
	if err != nil {
		return s
	}
	return out
}
