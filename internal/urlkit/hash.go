package urlkit

import "go-shortlink/internal/hashing"

// LongURLHash fingerprints the canonical percent-encoded form of a long URL.
// Callers pass the output of Normalize.
func LongURLHash(normalized string) int64 {
	return hashing.Sum(normalized)
}

// ShortURLHash fingerprints the percent-decoded form of a short URL. Short
// URLs are generated from a URL-safe alphabet, so decoding is normally a
// no-op; it exists to collapse maliciously encoded lookups onto the same key.
func ShortURLHash(raw string) int64 {
	return hashing.Sum(Decode(raw))
}
