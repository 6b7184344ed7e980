// Package cuid2 generates the prefixed identifiers used for catalog
// rows (str_ for stores, prd_ for products). IDs lead with a base62
// timestamp so rows created together land together in the primary-key
// index, followed by a CUID-like random tail.
package cuid2

import (
	crypto_rand "crypto/rand"
	"strings"
	"time"
)

// base62Alphabet orders digits before upper before lower, so base62
// strings compare the same way bytewise and numerically.
const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// EncodeTimestampBase62 encodes a Unix timestamp (seconds) as a fixed
// six-character base62 string. Fixed width keeps the encoding
// lexicographically sortable; six characters cover timestamps well
// beyond any catalog row this service will ever write.
func EncodeTimestampBase62(timestampSeconds int64) string {
	n := timestampSeconds
	result := make([]byte, 6)
	for i := 5; i >= 0; i-- {
		result[i] = base62Alphabet[n%62]
		n /= 62
	}
	return string(result)
}

// randomBase62 draws length base62 characters from crypto/rand.
//
// Six bits are taken at a time and values of 62 or 63 are rejected,
// which keeps the distribution uniform over the alphabet at a ~3%
// rejection rate. The initial read is padded to absorb the expected
// rejections; on the rare exhaustion it simply reads again.
func randomBase62(length int) string {
	bytesNeeded := (length*6)/8 + 4
	bytes := make([]byte, bytesNeeded)
	if _, err := crypto_rand.Read(bytes); err != nil {
		panic("failed to read random bytes: " + err.Error())
	}

	var result strings.Builder
	bitBuffer := uint64(0)
	bitsInBuffer := uint(0)
	byteIndex := 0

	for result.Len() < length {
		for bitsInBuffer < 6 && byteIndex < len(bytes) {
			bitBuffer = (bitBuffer << 8) | uint64(bytes[byteIndex])
			bitsInBuffer += 8
			byteIndex++
		}

		value := (bitBuffer >> (bitsInBuffer - 6)) & 0x3f
		bitsInBuffer -= 6

		if value < 62 {
			result.WriteByte(base62Alphabet[value])
		}

		if byteIndex >= len(bytes) && result.Len() < length {
			if _, err := crypto_rand.Read(bytes); err != nil {
				panic("failed to read random bytes: " + err.Error())
			}
			byteIndex = 0
			bitBuffer = 0
			bitsInBuffer = 0
		}
	}

	return result.String()
}

// PrefixedIdOptions tunes GeneratePrefixedId.
type PrefixedIdOptions struct {
	// TimeSortable prepends the six-character timestamp (the default).
	TimeSortable bool
	// RandomLength overrides the random tail length: 18 characters
	// when time-sortable, 24 otherwise.
	RandomLength int
}

// GeneratePrefixedId returns an identifier of the form
// prefix_<timestamp><random>, e.g. "prd_0CL2KwaB3cD5eF7gH9iJ1k".
// The timestamp portion makes IDs generated in the same import batch
// adjacent in a B-tree index.
func GeneratePrefixedId(prefix string, options PrefixedIdOptions) string {
	timeSortable := true
	randomLength := 0

	if options.TimeSortable {
		timeSortable = options.TimeSortable
	}
	if options.RandomLength > 0 {
		randomLength = options.RandomLength
	}

	if timeSortable {
		timestamp := EncodeTimestampBase62(time.Now().Unix())
		if randomLength == 0 {
			randomLength = 18
		}
		return prefix + "_" + timestamp + randomBase62(randomLength)
	}

	if randomLength == 0 {
		randomLength = 24
	}
	return prefix + "_" + randomBase62(randomLength)
}
