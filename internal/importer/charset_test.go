package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTextPassesUTF8Through(t *testing.T) {
	input := []byte("Mlijeko svježe čokolada šećer")
	assert.Equal(t, input, decodeText(input))
}

func TestDecodeTextStripsBOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("chain,price")...)
	assert.Equal(t, []byte("chain,price"), decodeText(input))
}

func TestDecodeTextWindows1250(t *testing.T) {
	// "Svježe čips" in Windows-1250: ž=0x9E, č=0xE8
	input := []byte{'S', 'v', 'j', 'e', 0x9E, 'e', ' ', 0xE8, 'i', 'p', 's'}
	assert.Equal(t, "Svježe čips", string(decodeText(input)))
}

func TestParseCSVDecodesWindows1250(t *testing.T) {
	// Header is ASCII; product name carries Windows-1250 diacritics.
	header := []byte("chain,store_code,product_name,price\n")
	row := []byte{'a', 'l', 'p', 'h', 'a', ',', '0', '0', '1', ',', 'K', 'r', 'u', 0x9A, ',', '2', '.', '0', '0', '\n'}

	result, err := ParseCSV(append(header, row...), importedAt)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Kruš", result.Rows[0].ProductName)
}
