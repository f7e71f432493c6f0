// Package analytics records classified request events: structured log lines
// routed by severity, and immutable fact rows joined to the dimension tables.
package analytics

import (
	"fmt"
	"strings"

	"go-shortlink/internal/domain"
)

// Canonical message keys. Every user-visible or logged message resolves
// through this table so wording stays consistent across pipelines.
const (
	KeyRobot                    = "ROBOT"
	KeyRequestInvalid           = "REQUEST_INVALID"
	KeyIPLookupInvalid          = "IP_LOOKUP_INVALID"
	KeyLongURLMissing           = "LONG_URL_MISSING"
	KeyLongURLInvalid           = "LONG_URL_INVALID"
	KeyLongURLBad               = "LONG_URL_BAD"
	KeyDisallowDoubleShortening = "DISALLOW_DOUBLE_SHORTENING"
	KeyHashCollision            = "HASH_COLLISION"
	KeyVanityPathInvalid        = "VANITY_PATH_INVALID"
	KeyVanityPathExists         = "VANITY_PATH_EXISTS"
	KeyShortURLInvalid          = "SHORT_URL_INVALID"
	KeyLongURLSubmitted         = "LONG_URL_SUBMITTED"
	KeyLongURLResubmitted       = "LONG_URL_RESUBMITTED"
	KeyShortURLCreated          = "SHORT_URL_CREATED"
	KeyShortEncodingMismatch    = "SHORT_URL_ENCODING_MISMATCH"
	KeyShortURLNotFound         = "SHORT_URL_NOT_FOUND"
	KeyShortURLMismatch         = "SHORT_URL_MISMATCH"
	KeyBlacklisted              = "BLACKLISTED"
	KeyRedirect                 = "HTTP_301"
	KeyNotFound                 = "HTTP_404"
	KeyMalformedRequest         = "MALFORMED_REQUEST"
	KeyPathSpaceExhausted       = "PATH_SPACE_EXHAUSTED"
	KeyInternalError            = "INTERNAL_ERROR"
)

var messages = map[string]string{
	KeyRobot:                    "Robot request detected (%v), not processed.",
	KeyRequestInvalid:           "Request could not be validated.",
	KeyIPLookupInvalid:          "Client IP address could not be determined.",
	KeyLongURLMissing:           "No long URL was provided.",
	KeyLongURLInvalid:           "'%v' is not a valid URL.",
	KeyLongURLBad:               "'%v' cannot be shortened.",
	KeyDisallowDoubleShortening: "'%v' is already a short URL and cannot be shortened again.",
	KeyHashCollision:            "Hash collision detected for '%v'.",
	KeyVanityPathInvalid:        "'%v' is not an acceptable custom path.",
	KeyVanityPathExists:         "The custom path '%v' is already in use.",
	KeyShortURLInvalid:          "'%v' is not a valid short URL.",
	KeyLongURLSubmitted:         "Long URL submitted: %v",
	KeyLongURLResubmitted:       "Long URL resubmitted: %v",
	KeyShortURLCreated:          "Short URL created: %v",
	KeyShortEncodingMismatch:    "Short URL '%v' is not in canonical form.",
	KeyShortURLNotFound:         "Short URL '%v' does not exist.",
	KeyShortURLMismatch:         "Short URL '%v' does not match its stored form.",
	KeyBlacklisted:              "Blacklisted.",
	KeyRedirect:                 "Redirecting to %v",
	KeyNotFound:                 "'%v' could not be found.",
	KeyMalformedRequest:         "Request body could not be parsed.",
	KeyPathSpaceExhausted:       "Could not find a free short path for '%v'.",
	KeyInternalError:            "The request could not be processed.",
}

// lastResort is served when a key has no message. Overridable through
// configuration at startup.
var lastResort = "SEVERE ERROR: EXPECTED MESSAGE NOT FOUND!"

// SetLastResortMessage replaces the fallback served for unmapped keys.
func SetLastResortMessage(msg string) {
	if strings.TrimSpace(msg) != "" {
		lastResort = msg
	}
}

// MessageFor renders the canonical message for key, substituting arg into its
// single placeholder when the template carries one.
func MessageFor(key string, arg any) string {
	tmpl, ok := messages[key]
	if !ok {
		return lastResort
	}
	if strings.Contains(tmpl, "%v") {
		return fmt.Sprintf(tmpl, arg)
	}
	return tmpl
}

// NewOutcome builds a classified outcome with its canonical message.
func NewOutcome(t domain.EventType, status int, key string, arg any) *domain.Outcome {
	return &domain.Outcome{
		Type:    t,
		Status:  status,
		Key:     key,
		Message: MessageFor(key, arg),
	}
}
