package dimension

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-shortlink/internal/domain"
	"go-shortlink/internal/hashing"
)

type fakeDimensionRepo struct {
	nextID  int64
	records map[domain.DimensionKind]map[int64]*domain.DimensionRecord

	createErr error
	updates   int
}

func newFakeDimensionRepo() *fakeDimensionRepo {
	return &fakeDimensionRepo{records: map[domain.DimensionKind]map[int64]*domain.DimensionRecord{}}
}

func (f *fakeDimensionRepo) FindByHash(_ context.Context, kind domain.DimensionKind, hash int64) (*domain.DimensionRecord, error) {
	if rec, ok := f.records[kind][hash]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDimensionRepo) Create(_ context.Context, rec *domain.DimensionRecord) error {
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		// a competing writer committed the row first
		cp := *rec
		f.seed(&cp)
		return err
	}
	if f.records[rec.Kind] == nil {
		f.records[rec.Kind] = map[int64]*domain.DimensionRecord{}
	}
	if _, ok := f.records[rec.Kind][rec.Hash]; ok {
		return domain.ErrDuplicateKey
	}
	f.nextID++
	rec.ID = f.nextID
	cp := *rec
	f.records[rec.Kind][rec.Hash] = &cp
	return nil
}

func (f *fakeDimensionRepo) UpdateValue(_ context.Context, kind domain.DimensionKind, id int64, value string) error {
	f.updates++
	for _, rec := range f.records[kind] {
		if rec.ID == id {
			rec.Value = value
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeDimensionRepo) seed(rec *domain.DimensionRecord) {
	if f.records[rec.Kind] == nil {
		f.records[rec.Kind] = map[int64]*domain.DimensionRecord{}
	}
	f.nextID++
	rec.ID = f.nextID
	f.records[rec.Kind][rec.Hash] = rec
}

func TestGetOrCreateCreatesOnFirstSight(t *testing.T) {
	repo := newFakeDimensionRepo()
	s := NewStore(repo, zap.NewNop())

	rec, err := s.GetOrCreate(context.Background(), domain.DimHost, "Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "example.com", rec.Value)
	assert.True(t, rec.IsMutable)
	assert.NotZero(t, rec.ID)

	again, err := s.GetOrCreate(context.Background(), domain.DimHost, "example.com")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
	assert.Zero(t, repo.updates)
}

func TestGetOrCreateNormalizesEmptyToMissing(t *testing.T) {
	s := NewStore(newFakeDimensionRepo(), zap.NewNop())

	rec, err := s.GetOrCreate(context.Background(), domain.DimReferer, "   ")
	require.NoError(t, err)
	assert.Equal(t, "missing", rec.Value)
}

func TestGetOrCreateUpdatesMutableValue(t *testing.T) {
	repo := newFakeDimensionRepo()
	// the hash is computed from the normalized spelling, so a record whose
	// stored value drifted from it simulates an earlier raw form
	hash := hashing.Sum("example.com")
	repo.seed(&domain.DimensionRecord{Hash: hash, Kind: domain.DimHost, Value: "stale", IsMutable: true})
	s := NewStore(repo, zap.NewNop())

	rec, err := s.GetOrCreate(context.Background(), domain.DimHost, "example.com")
	require.NoError(t, err)
	assert.Equal(t, "example.com", rec.Value)
	assert.Equal(t, 1, repo.updates)
}

func TestGetOrCreateLeavesFrozenValue(t *testing.T) {
	repo := newFakeDimensionRepo()
	hash := hashing.Sum("example.com")
	repo.seed(&domain.DimensionRecord{Hash: hash, Kind: domain.DimHost, Value: "frozen-form", IsMutable: false})
	s := NewStore(repo, zap.NewNop())

	rec, err := s.GetOrCreate(context.Background(), domain.DimHost, "example.com")
	require.NoError(t, err)
	assert.Equal(t, "frozen-form", rec.Value)
	assert.Zero(t, repo.updates)
}

func TestGetOrCreateRefetchesAfterDuplicateKey(t *testing.T) {
	repo := newFakeDimensionRepo()
	repo.createErr = domain.ErrDuplicateKey
	s := NewStore(repo, zap.NewNop())

	rec, err := s.GetOrCreate(context.Background(), domain.DimIP, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", rec.Value)
	assert.NotZero(t, rec.ID)
}

func TestGetOrCreateGeoSentinels(t *testing.T) {
	s := NewStore(newFakeDimensionRepo(), zap.NewNop())

	rec, err := s.GetOrCreateGeo(context.Background(), domain.DimCity, "", true)
	require.NoError(t, err)
	assert.Equal(t, ValueUnknown, rec.Value)

	rec, err = s.GetOrCreateGeo(context.Background(), domain.DimCity, "", false)
	require.NoError(t, err)
	assert.Equal(t, ValueMissing, rec.Value)

	rec, err = s.GetOrCreateGeo(context.Background(), domain.DimCity, "Lisbon", true)
	require.NoError(t, err)
	assert.Equal(t, "lisbon", rec.Value)
}

func TestResolveAllCoversEveryKind(t *testing.T) {
	s := NewStore(newFakeDimensionRepo(), zap.NewNop())

	req := &domain.RequestInfo{
		Host:      "go.shr",
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) Gecko/20100101 Firefox/115.0",
		Referer:   "https://example.com/",
		IP:        net.ParseIP("93.184.216.34"),
		IPGlobal:  true,
		Geo: domain.GeoPoint{
			City:    "Norwell",
			Country: "United States",
			Known:   true,
		},
	}
	set, err := s.ResolveAll(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, set, len(domain.DimensionKinds))
	for _, kind := range domain.DimensionKinds {
		require.NotNil(t, set[kind], "kind %s", kind)
		assert.NotZero(t, set[kind].ID)
	}
	assert.Equal(t, "norwell", set[domain.DimCity].Value)
	assert.Equal(t, ValueUnknown, set[domain.DimRegion].Value)
	assert.Equal(t, "desktop", set[domain.DimDevice].Value)
	assert.Equal(t, "93.184.216.34", set[domain.DimIP].Value)
}

func TestDeviceClass(t *testing.T) {
	assert.Equal(t, ValueUnknown, DeviceClass(""))
	assert.Equal(t, "bot", DeviceClass("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"))
	assert.Equal(t, "mobile", DeviceClass("Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1"))
	assert.Equal(t, "desktop", DeviceClass("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"))
}
