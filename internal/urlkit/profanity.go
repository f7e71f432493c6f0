package urlkit

import (
	"net/url"
	"regexp"
	"strings"
)

// Classifier scores a batch of candidate tokens for profanity. The default
// implementation is a wordlist; deployments can plug in a statistical model.
type Classifier interface {
	Profane(tokens []string) bool
}

// ScreenerConfig mirrors the profanity-related configuration switches.
type ScreenerConfig struct {
	// FastCheck enables the tokenized substring screen. When false the
	// screener never flags anything.
	FastCheck bool
	// DeepCheck additionally consults the Classifier.
	DeepCheck bool
}

// Screener tokenizes URLs and checks the pieces against a blocked-token set
// and an optional classifier.
type Screener struct {
	cfg        ScreenerConfig
	classifier Classifier
}

// NewScreener builds a Screener. A nil classifier disables the deep check.
func NewScreener(cfg ScreenerConfig, classifier Classifier) *Screener {
	return &Screener{cfg: cfg, classifier: classifier}
}

// splitters matches every URL-safe delimiter character.
var splitters = regexp.MustCompile(`[./_\-~$+!*(),]`)

// IsProfane reports whether any token substring of raw is blocked. Inputs
// under 3 characters cannot contain a blocked token and short-circuit.
func (s *Screener) IsProfane(raw string) bool {
	if len(raw) < 3 || !s.cfg.FastCheck {
		return false
	}

	parts := tokenize(Decode(raw))

	// The three-letter set only applies when every token is short enough to
	// plausibly be a disguised word; longer tokens carry real words the
	// classifier handles better.
	checkShort := true
	seen := make(map[string]struct{})
	var candidates []string
	for _, p := range parts {
		if p == "" {
			continue
		}
		if len(p) > 5 {
			checkShort = false
		}
		for _, sub := range substrings(p, 2) {
			if _, ok := seen[sub]; ok {
				continue
			}
			seen[sub] = struct{}{}
			candidates = append(candidates, sub)
		}
	}

	if checkShort {
		for _, c := range candidates {
			if _, ok := blockedTokens[c]; ok {
				return true
			}
		}
	}

	if s.cfg.DeepCheck && s.classifier != nil && s.classifier.Profane(candidates) {
		return true
	}
	return false
}

// tokenize splits the host, path and query of a URL (or bare path segment)
// on URL-safe delimiters.
func tokenize(decoded string) []string {
	u, err := url.Parse(decoded)
	if err != nil || (u.Host == "" && u.Path == "" && u.Opaque == "") {
		return splitters.Split(strings.ToLower(decoded), -1)
	}
	var parts []string
	for _, section := range []string{u.Host, u.Path, u.RawQuery, u.Opaque} {
		if section == "" {
			continue
		}
		parts = append(parts, splitters.Split(strings.ToLower(section), -1)...)
	}
	return parts
}

// substrings returns every substring of s of at least minLen characters.
func substrings(s string, minLen int) []string {
	if len(s) < minLen {
		return nil
	}
	out := make([]string, 0, len(s)*(len(s)+1)/2)
	for i := 0; i < len(s); i++ {
		for j := i + minLen; j <= len(s); j++ {
			out = append(out, s[i:j])
		}
	}
	return out
}

// WordlistClassifier flags tokens found in a fixed set. It stands in for the
// statistical model the service can be configured with.
type WordlistClassifier struct {
	words map[string]struct{}
}

// NewWordlistClassifier builds a classifier from the given words, lowercased.
func NewWordlistClassifier(words []string) *WordlistClassifier {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &WordlistClassifier{words: set}
}

// Profane reports whether any token is in the wordlist.
func (c *WordlistClassifier) Profane(tokens []string) bool {
	for _, t := range tokens {
		if _, ok := c.words[t]; ok {
			return true
		}
	}
	return false
}
