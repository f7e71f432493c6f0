// Package urlkit canonicalizes and screens the URLs flowing through the
// shortening and resolution pipelines. The encoded form produced here feeds
// the long-URL hash, so Encode must stay byte-stable.
package urlkit

import (
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// escapeSafe lists the bytes never percent-encoded by Encode, matching the
// RFC 3986 unreserved set plus the path separator.
const escapeSafe = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_.-~/"

const upperhex = "0123456789ABCDEF"

// Encode percent-encodes every byte outside the unreserved set, then restores
// the scheme separator so "http%3A//" round-trips back to "http://".
func Encode(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if strings.IndexByte(escapeSafe, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xf])
	}
	return strings.Replace(b.String(), "%3A//", "://", 1)
}

// Decode percent-decodes raw. Malformed escapes leave the input unchanged
// rather than failing, since arbitrary caller-supplied strings pass through
// here before validation.
func Decode(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Normalize canonicalizes a submitted long URL. A URL whose decoded form
// differs from the input was already percent-encoded by the caller and is
// used verbatim; anything else is encoded here.
func Normalize(raw string) (normalized string, preencoded bool) {
	if Decode(raw) != raw {
		return raw, true
	}
	return Encode(raw), false
}

// IsValid reports whether raw is a structurally valid absolute URL. In dev
// mode a localhost URL with an explicit port is accepted even though public
// validators reject it.
func IsValid(raw string, devMode bool) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	if devMode && strings.Contains(raw, "://localhost:") {
		return true
	}
	return validation.Validate(raw, is.URL) == nil
}

// Scheme returns the lowercased scheme of raw, or "" when unparseable.
func Scheme(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}

// StripTrailingSlash removes at most one trailing slash. Short URLs are
// compared with and without it so both spellings resolve identically.
func StripTrailingSlash(raw string) string {
	return strings.TrimSuffix(raw, "/")
}
