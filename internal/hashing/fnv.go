// Package hashing derives the signed 64-bit fingerprints used as primary
// keys for URL and dimension records. The output of Sum is persisted, so it
// must never change.
package hashing

import "strings"

// FNV-1a 64-bit parameters.
// See http://www.isthe.com/chongo/tech/comp/fnv/index.html.
const (
	offset64 = uint64(14695981039346656037)
	prime64  = uint64(1099511628211)
)

// Sum returns the FNV-1a 64-bit hash of the trimmed UTF-8 bytes of s,
// remapped into the signed 64-bit range. Values above math.MaxInt64 wrap
// symmetrically into the negative range, which is exactly the two's
// complement reinterpretation performed by the int64 conversion.
func Sum(s string) int64 {
	h := offset64
	for _, b := range []byte(strings.TrimSpace(s)) {
		h ^= uint64(b)
		h *= prime64
	}
	return int64(h)
}

// Key normalizes a raw dimension value before hashing: interior whitespace
// collapsed to single spaces, lowercased. Empty input hashes the "missing"
// sentinel so absent headers still map to a stable record.
func Key(raw string) int64 {
	return Sum(Normalize(raw))
}

// Normalize returns the canonical dimension form of raw.
func Normalize(raw string) string {
	v := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	if v == "" {
		v = "missing"
	}
	return v
}
