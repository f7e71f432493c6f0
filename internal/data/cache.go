package data

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"go-shortlink/internal/domain"
)

// cacheTTL bounds staleness after a short URL is deactivated out of band.
const cacheTTL = 10 * time.Minute

// CachedShortURLs is a read-through redis cache in front of a short-URL
// repository. Only the hash lookup on the redirect hot path is cached.
type CachedShortURLs struct {
	inner domain.ShortURLRepository
	rdb   *redis.Client
	log   *zap.Logger
}

// NewCachedShortURLs wraps inner. A nil client returns inner unwrapped.
func NewCachedShortURLs(inner domain.ShortURLRepository, rdb *redis.Client, log *zap.Logger) domain.ShortURLRepository {
	if rdb == nil {
		return inner
	}
	return &CachedShortURLs{inner: inner, rdb: rdb, log: log}
}

func cacheKey(hash int64) string {
	return "shortlink:short:" + strconv.FormatInt(hash, 10)
}

func (c *CachedShortURLs) FindByHash(ctx context.Context, hash int64) (*domain.ShortURL, error) {
	key := cacheKey(hash)
	if payload, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var s domain.ShortURL
		if jerr := json.Unmarshal(payload, &s); jerr == nil {
			return &s, nil
		}
		c.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("short url cache read failed", zap.Error(err))
	}

	s, err := c.inner.FindByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if payload, jerr := json.Marshal(s); jerr == nil {
		if serr := c.rdb.Set(ctx, key, payload, cacheTTL).Err(); serr != nil {
			c.log.Warn("short url cache write failed", zap.Error(serr))
		}
	}
	return s, nil
}

// Create delegates and drops any stale entry for the hash. The cache is not
// primed here: the insert may still roll back with its transaction.
func (c *CachedShortURLs) Create(ctx context.Context, s *domain.ShortURL) error {
	if err := c.inner.Create(ctx, s); err != nil {
		return err
	}
	c.rdb.Del(ctx, cacheKey(s.Hash))
	return nil
}

func (c *CachedShortURLs) FindActiveByLongURLID(ctx context.Context, longURLID int64) (*domain.ShortURL, error) {
	return c.inner.FindActiveByLongURLID(ctx, longURLID)
}

func (c *CachedShortURLs) FindLatestActive(ctx context.Context) (*domain.ShortURL, error) {
	return c.inner.FindLatestActive(ctx)
}

func (c *CachedShortURLs) ExistsByHash(ctx context.Context, hash int64) (bool, error) {
	return c.inner.ExistsByHash(ctx, hash)
}
