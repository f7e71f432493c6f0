// Package dimension implements the get-or-create store behind the analytics
// dimensions. Records are keyed by the hash of their normalized value; the
// unique index on that hash arbitrates concurrent creation.
package dimension

import (
	"context"
	"errors"

	"github.com/mssola/useragent"
	"go.uber.org/zap"

	"go-shortlink/internal/domain"
	"go-shortlink/internal/hashing"
)

// Sentinel values recorded when a geo attribute cannot be resolved.
const (
	// ValueUnknown marks a global IP that produced no geolocation match.
	ValueUnknown = "unknown"
	// ValueMissing marks private, loopback, link-local or multicast IPs
	// that never reach the geolocation database.
	ValueMissing = "missing"
)

// Store resolves raw request attributes to stable dimension records.
type Store struct {
	repo domain.DimensionRepository
	log  *zap.Logger
}

// NewStore builds a Store.
func NewStore(repo domain.DimensionRepository, log *zap.Logger) *Store {
	return &Store{repo: repo, log: log}
}

// GetOrCreate returns the record for raw's normalized value, creating it on
// first observation. Existing mutable records pick up a changed value;
// records frozen by a blacklist match are returned untouched so spoofed
// headers cannot rewrite flagged history.
func (s *Store) GetOrCreate(ctx context.Context, kind domain.DimensionKind, raw string) (*domain.DimensionRecord, error) {
	norm := hashing.Normalize(raw)
	hash := hashing.Sum(norm)

	rec, err := s.repo.FindByHash(ctx, kind, hash)
	if err == nil {
		if rec.IsMutable && rec.Value != norm {
			if uerr := s.repo.UpdateValue(ctx, kind, rec.ID, norm); uerr != nil {
				return nil, uerr
			}
			rec.Value = norm
		}
		return rec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	rec = &domain.DimensionRecord{
		Hash:      hash,
		Kind:      kind,
		Value:     norm,
		IsMutable: true,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			// lost the creation race; the committed row wins
			return s.repo.FindByHash(ctx, kind, hash)
		}
		return nil, err
	}
	return rec, nil
}

// GetOrCreateGeo resolves a geo attribute, substituting the unknown/missing
// sentinel when the value is absent.
func (s *Store) GetOrCreateGeo(ctx context.Context, kind domain.DimensionKind, value string, ipGlobal bool) (*domain.DimensionRecord, error) {
	if value == "" {
		if ipGlobal {
			value = ValueUnknown
		} else {
			value = ValueMissing
		}
	}
	return s.GetOrCreate(ctx, kind, value)
}

// DeviceClass buckets a user agent into a coarse device dimension value.
func DeviceClass(ua string) string {
	if ua == "" {
		return ValueUnknown
	}
	parsed := useragent.New(ua)
	switch {
	case parsed.Bot():
		return "bot"
	case parsed.Mobile():
		return "mobile"
	default:
		return "desktop"
	}
}

// ResolveAll materializes every dimension for one request.
func (s *Store) ResolveAll(ctx context.Context, req *domain.RequestInfo) (domain.DimensionSet, error) {
	set := make(domain.DimensionSet, len(domain.DimensionKinds))

	plain := map[domain.DimensionKind]string{
		domain.DimIP:        req.IPString(),
		domain.DimHost:      req.Host,
		domain.DimReferer:   req.Referer,
		domain.DimUserAgent: req.UserAgent,
		domain.DimDevice:    DeviceClass(req.UserAgent),
	}
	for kind, raw := range plain {
		rec, err := s.GetOrCreate(ctx, kind, raw)
		if err != nil {
			return nil, err
		}
		set[kind] = rec
	}

	geo := map[domain.DimensionKind]string{
		domain.DimCity:       req.Geo.City,
		domain.DimRegion:     req.Geo.Region,
		domain.DimCountry:    req.Geo.Country,
		domain.DimContinent:  req.Geo.Continent,
		domain.DimPostalCode: req.Geo.PostalCode,
	}
	for kind, value := range geo {
		rec, err := s.GetOrCreateGeo(ctx, kind, value, req.IPGlobal)
		if err != nil {
			return nil, err
		}
		set[kind] = rec
	}
	return set, nil
}
