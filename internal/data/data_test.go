package data

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-shortlink/internal/domain"
	"go-shortlink/internal/hashing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("sqlite3", "file::memory:?_fk=1")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	assert.Error(t, err)
}

func TestMigrationSeeds(t *testing.T) {
	db := openTestDB(t)
	repo := NewLongURLRepository(db)

	for _, value := range []string{"unknown", "unspecified"} {
		u, err := repo.FindByHash(context.Background(), hashing.Sum(value))
		require.NoError(t, err, value)
		assert.Equal(t, value, u.LongURL)
		assert.False(t, u.IsActive)
	}
}

func TestLongURLRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewLongURLRepository(db)
	ctx := context.Background()

	u := &domain.LongURL{
		Hash:        12345,
		LongURL:     "http://example.com/page",
		Title:       "Example",
		Description: "a page",
		MetaStatus:  200,
		IsActive:    true,
	}
	require.NoError(t, repo.Create(ctx, u))
	require.NotZero(t, u.ID)

	byHash, err := repo.FindByHash(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, u.LongURL, byHash.LongURL)
	assert.Equal(t, u.Title, byHash.Title)
	assert.True(t, byHash.IsActive)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Hash, byID.Hash)

	dup := &domain.LongURL{Hash: 12345, LongURL: "http://other.example/"}
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrDuplicateKey)

	_, err = repo.FindByHash(ctx, 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShortURLRepo(t *testing.T) {
	db := openTestDB(t)
	longs := NewLongURLRepository(db)
	shorts := NewShortURLRepository(db)
	ctx := context.Background()

	long := &domain.LongURL{Hash: 1, LongURL: "http://example.com/one", IsActive: true}
	require.NoError(t, longs.Create(ctx, long))

	first := &domain.ShortURL{Hash: 100, LongURLID: long.ID, ShortURL: "http://go.shr/aaa111", PathSize: 6, IsActive: true}
	require.NoError(t, shorts.Create(ctx, first))

	found, err := shorts.FindByHash(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, first.ShortURL, found.ShortURL)

	active, err := shorts.FindActiveByLongURLID(ctx, long.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)

	exists, err := shorts.ExistsByHash(ctx, 100)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = shorts.ExistsByHash(ctx, 101)
	require.NoError(t, err)
	assert.False(t, exists)

	dup := &domain.ShortURL{Hash: 100, LongURLID: long.ID, ShortURL: "http://go.shr/bbb222"}
	assert.ErrorIs(t, shorts.Create(ctx, dup), domain.ErrDuplicateKey)

	second := &domain.ShortURL{Hash: 200, LongURLID: long.ID, ShortURL: "http://go.shr/ccc333", PathSize: 6, IsActive: true}
	require.NoError(t, shorts.Create(ctx, second))

	latest, err := shorts.FindLatestActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestDimensionRepo(t *testing.T) {
	db := openTestDB(t)
	repo := NewDimensionRepository(db)
	ctx := context.Background()

	rec := &domain.DimensionRecord{Kind: domain.DimHost, Hash: 7, Value: "example.com", IsMutable: true}
	require.NoError(t, repo.Create(ctx, rec))
	require.NotZero(t, rec.ID)

	found, err := repo.FindByHash(ctx, domain.DimHost, 7)
	require.NoError(t, err)
	assert.Equal(t, "example.com", found.Value)
	assert.True(t, found.IsMutable)

	// same hash under another kind is a distinct record
	other := &domain.DimensionRecord{Kind: domain.DimIP, Hash: 7, Value: "10.0.0.1", IsMutable: true}
	require.NoError(t, repo.Create(ctx, other))

	dup := &domain.DimensionRecord{Kind: domain.DimHost, Hash: 7, Value: "x"}
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrDuplicateKey)

	require.NoError(t, repo.UpdateValue(ctx, domain.DimHost, rec.ID, "example.org"))
	found, err = repo.FindByHash(ctx, domain.DimHost, 7)
	require.NoError(t, err)
	assert.Equal(t, "example.org", found.Value)

	frozen := &domain.DimensionRecord{Kind: domain.DimHost, Hash: 8, Value: "frozen.example", IsMutable: false}
	require.NoError(t, repo.Create(ctx, frozen))
	assert.ErrorIs(t, repo.UpdateValue(ctx, domain.DimHost, frozen.ID, "new"), domain.ErrNotFound)
}

func TestFactRepoFallsBackToUnspecified(t *testing.T) {
	db := openTestDB(t)
	facts := NewFactEventRepository(db)
	ctx := context.Background()

	fact := &domain.FactEvent{
		EventDate:  "20260831",
		EventTime:  "120000",
		EventType:  domain.EventRedirect,
		CID:        "cid-1",
		HTTPStatus: 301,
		Message:    "Redirecting",
		DimensionIDs: map[domain.DimensionKind]int64{
			domain.DimIP:   3,
			domain.DimHost: 4,
		},
	}
	require.NoError(t, facts.Create(ctx, fact))
	require.NotZero(t, fact.ID)

	var longID, ipID, cityID int64
	err := db.QueryRowContext(ctx,
		`SELECT longurl_id, ip_id, city_id FROM factevents WHERE id = ?`, fact.ID).
		Scan(&longID, &ipID, &cityID)
	require.NoError(t, err)

	unspecified, err := NewLongURLRepository(db).FindByHash(ctx, hashing.Sum("unspecified"))
	require.NoError(t, err)
	assert.Equal(t, unspecified.ID, longID)
	assert.Equal(t, int64(3), ipID)
	assert.Zero(t, cityID)
}

func TestBlacklistRepo(t *testing.T) {
	db := openTestDB(t)
	repo := NewBlacklistRepository(db)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO blacklist (is_active, ip_id, host_id) VALUES (1, 5, 0)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO blacklist (is_active, ip_id) VALUES (0, 6)`)
	require.NoError(t, err)

	entries, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(5), entries[0].DimIDs[domain.DimIP])
	assert.Zero(t, entries[0].DimIDs[domain.DimHost])
	assert.True(t, entries[0].IsActive)
}

func TestUnitOfWorkCommitAndRollback(t *testing.T) {
	db := openTestDB(t)
	uow := NewUnitOfWork(db)
	longs := NewLongURLRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := uow.Do(ctx, func(ctx context.Context) error {
		if cerr := longs.Create(ctx, &domain.LongURL{Hash: 50, LongURL: "http://rollback.example/"}); cerr != nil {
			return cerr
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, err = longs.FindByHash(ctx, 50)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = uow.Do(ctx, func(ctx context.Context) error {
		return longs.Create(ctx, &domain.LongURL{Hash: 51, LongURL: "http://commit.example/", IsActive: true})
	})
	require.NoError(t, err)
	committed, err := longs.FindByHash(ctx, 51)
	require.NoError(t, err)
	assert.True(t, committed.IsActive)
}

func TestRebindForPostgres(t *testing.T) {
	db := &DB{driver: "postgres"}
	assert.Equal(t,
		"SELECT id FROM longurls WHERE hash = $1 AND is_active = $2",
		db.rebind("SELECT id FROM longurls WHERE hash = ? AND is_active = ?"))

	db.driver = "sqlite3"
	assert.Equal(t, "hash = ?", db.rebind("hash = ?"))
}

func TestCachedShortURLsNilClientUnwraps(t *testing.T) {
	db := openTestDB(t)
	inner := NewShortURLRepository(db)

	repo := NewCachedShortURLs(inner, nil, zap.NewNop())
	assert.Same(t, domain.ShortURLRepository(inner), repo)
}
