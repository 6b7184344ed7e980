package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBarcode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Valid EAN-13", "3850012345678", "3850012345678"},
		{"UPC-A to EAN-13", "123456789012", "0123456789012"},
		{"Strip hyphens", "385-001-234-5678", "3850012345678"},
		{"Strip spaces", "385 001 234 5678", "3850012345678"},
		{"All zeros placeholder", "0000000000000", ""},
		{"Variable weight code", "2123456789012", ""},
		{"Invalid check digit", "3850012345679", ""},
		{"Short code (internal)", "12345", "12345"},
		{"Empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeBarcode(tt.input))
		})
	}
}

func TestValidEAN13CheckDigit(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"3850012345678", true},
		{"3850012345679", false},
		{"1234567890128", true},
		{"123", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, validEAN13CheckDigit(tt.input))
		})
	}
}
