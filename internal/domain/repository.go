package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateKey is returned when an insert hits a unique constraint. The
// hash columns carry unique indexes, so callers treat this as "someone else
// just created it" and re-fetch instead of failing.
var ErrDuplicateKey = errors.New("duplicate key")

// LongURLRepository persists LongURL rows keyed by their content hash.
type LongURLRepository interface {
	Create(ctx context.Context, u *LongURL) error
	FindByHash(ctx context.Context, hash int64) (*LongURL, error)
	FindByID(ctx context.Context, id int64) (*LongURL, error)
}

// ShortURLRepository persists ShortURL rows keyed by their content hash.
type ShortURLRepository interface {
	Create(ctx context.Context, s *ShortURL) error
	FindByHash(ctx context.Context, hash int64) (*ShortURL, error)
	FindActiveByLongURLID(ctx context.Context, longURLID int64) (*ShortURL, error)
	FindLatestActive(ctx context.Context) (*ShortURL, error)
	ExistsByHash(ctx context.Context, hash int64) (bool, error)
}

// DimensionRepository persists dimension records, one table per kind.
type DimensionRepository interface {
	FindByHash(ctx context.Context, kind DimensionKind, hash int64) (*DimensionRecord, error)
	Create(ctx context.Context, rec *DimensionRecord) error
	UpdateValue(ctx context.Context, kind DimensionKind, id int64, value string) error
}

// FactEventRepository appends immutable analytics rows.
type FactEventRepository interface {
	Create(ctx context.Context, f *FactEvent) error
}

// BlacklistRepository reads veto rules.
type BlacklistRepository interface {
	FindActive(ctx context.Context) ([]*BlacklistEntry, error)
}

// UnitOfWork runs fn inside a single storage transaction. Repositories
// participate by reading the transaction from ctx.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
