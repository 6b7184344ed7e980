package importer

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText converts price file content to UTF-8. Chain exports are a
// mix of UTF-8 and Windows-1250; files that already validate as UTF-8
// pass through untouched so diacritics are never double-decoded.
func decodeText(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data
	}

	decoded, err := charmap.Windows1250.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}
