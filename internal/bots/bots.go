// Package bots screens requests from known crawlers before they reach the
// shortening or resolution pipelines.
package bots

import (
	"strings"
	"sync"
	"time"

	"github.com/mssola/useragent"
)

// ListProvider supplies the bot substring list. The static provider below
// serves configured lists; deployments backed by a shared store refresh
// through the same interface.
type ListProvider interface {
	BotList() ([]string, error)
}

// StaticList is a fixed bot list.
type StaticList []string

// BotList returns the list.
func (s StaticList) BotList() ([]string, error) {
	return s, nil
}

// Detector matches user agents against a TTL-cached bot list, with a parser
// heuristic as backstop for bots the list misses.
type Detector struct {
	provider ListProvider
	ttl      time.Duration

	mu      sync.Mutex
	list    []string
	fetched time.Time
}

// NewDetector builds a Detector refreshing its list every ttl.
func NewDetector(provider ListProvider, ttl time.Duration) *Detector {
	return &Detector{provider: provider, ttl: ttl}
}

// Detect returns the matched bot name and true when ua belongs to a known
// bot. The name is the list entry that matched, or the parser-reported
// browser name for heuristic hits.
func (d *Detector) Detect(ua string) (string, bool) {
	lc := strings.ToLower(ua)
	for _, needle := range d.botList() {
		if needle != "" && strings.Contains(lc, needle) {
			return needle, true
		}
	}

	parsed := useragent.New(ua)
	if parsed.Bot() {
		name, _ := parsed.Browser()
		if name == "" {
			name = "bot"
		}
		return strings.ToLower(name), true
	}
	return "", false
}

func (d *Detector) botList() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.list != nil && time.Since(d.fetched) < d.ttl {
		return d.list
	}
	fresh, err := d.provider.BotList()
	if err != nil {
		// keep serving the stale list on refresh failure
		return d.list
	}
	lowered := make([]string, 0, len(fresh))
	for _, s := range fresh {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(s)))
	}
	d.list = lowered
	d.fetched = time.Now()
	return d.list
}
