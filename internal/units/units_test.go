package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseQuantity verifies the fixed ordered unit patterns.
func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input    string
		expected Quantity
		ok       bool
	}{
		{"500ml", Quantity{500, UnitML}, true},
		{"2kg", Quantity{2, UnitKG}, true},
		{"1.5 lt", Quantity{1.5, UnitL}, true},
		{"1,5 l", Quantity{1.5, UnitL}, true},
		{"750 G", Quantity{750, UnitG}, true},
		{"250gr", Quantity{250, UnitG}, true},
		{"0.33 l", Quantity{0.33, UnitL}, true},
		{"10 kom", Quantity{10, UnitItem}, true},
		{"4x", Quantity{4, UnitItem}, true},
		{"6", Quantity{6, UnitItem}, true},
		{"", Quantity{}, false},
		{"per piece", Quantity{}, false},
		{"ml", Quantity{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseQuantity(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

// TestNormalize verifies g->kg and ml->l conversion.
func TestNormalize(t *testing.T) {
	assert.Equal(t, Quantity{0.5, UnitKG}, Quantity{500, UnitG}.Normalize())
	assert.Equal(t, Quantity{0.25, UnitL}, Quantity{250, UnitML}.Normalize())
	assert.Equal(t, Quantity{2, UnitKG}, Quantity{2, UnitKG}.Normalize())
	assert.Equal(t, Quantity{3, UnitItem}, Quantity{3, UnitItem}.Normalize())
}

// TestUnitPriceCents verifies unit price derivation and the
// divide-by-zero guard.
func TestUnitPriceCents(t *testing.T) {
	// 2.50 for 500 g -> 5.00 per kg
	p, ok := UnitPriceCents(250, Quantity{500, UnitG})
	assert.True(t, ok)
	assert.Equal(t, int64(500), p)

	// 1.99 for 330 ml -> 6.03 per l
	p, ok = UnitPriceCents(199, Quantity{330, UnitML})
	assert.True(t, ok)
	assert.Equal(t, int64(603), p)

	// 4.00 for 2 kg -> 2.00 per kg
	p, ok = UnitPriceCents(400, Quantity{2, UnitKG})
	assert.True(t, ok)
	assert.Equal(t, int64(200), p)

	// Zero quantity yields no unit price, not a division error.
	_, ok = UnitPriceCents(400, Quantity{0, UnitKG})
	assert.False(t, ok)

	_, ok = UnitPriceCents(400, Quantity{})
	assert.False(t, ok)
}

// TestFold verifies diacritic and case folding.
func TestFold(t *testing.T) {
	assert.Equal(t, "vocni jogurt", Fold("Voćni Jogurt"))
	assert.Equal(t, "1.5 lt", Fold(" 1.5 LT "))
}
