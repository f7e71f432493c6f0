package analytics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-shortlink/internal/domain"
)

// Blacklist evaluates veto rules against the dimension ids of a request.
// Active entries are cached for a TTL so the hot path stays off the rules
// table.
type Blacklist struct {
	repo domain.BlacklistRepository
	ttl  time.Duration
	log  *zap.Logger

	mu      sync.Mutex
	entries []*domain.BlacklistEntry
	fetched time.Time
}

// NewBlacklist builds a Blacklist refreshing its rule cache every ttl.
func NewBlacklist(repo domain.BlacklistRepository, ttl time.Duration, log *zap.Logger) *Blacklist {
	return &Blacklist{repo: repo, ttl: ttl, log: log}
}

// Vetoed reports whether any active rule matches the supplied dimension ids.
func (b *Blacklist) Vetoed(ctx context.Context, ids map[domain.DimensionKind]int64) bool {
	for _, entry := range b.active(ctx) {
		if entry.Matches(ids) {
			b.log.Warn("request vetoed by blacklist", zap.Int64("rule_id", entry.ID))
			return true
		}
	}
	return false
}

func (b *Blacklist) active(ctx context.Context) []*domain.BlacklistEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.fetched.IsZero() && time.Since(b.fetched) < b.ttl {
		return b.entries
	}
	fresh, err := b.repo.FindActive(ctx)
	if err != nil {
		b.log.Error("blacklist refresh failed", zap.Error(err))
		// keep vetoing on the stale rule set rather than failing open
		return b.entries
	}
	b.entries = fresh
	b.fetched = time.Now()
	return b.entries
}
