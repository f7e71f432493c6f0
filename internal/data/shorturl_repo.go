package data

import (
	"context"
	"database/sql"
	"errors"

	"go-shortlink/internal/domain"
)

const shortURLColumns = `id, hash, longurl_id, shorturl, path_size, compression_ratio, is_active`

// ShortURLRepo persists short URLs.
type ShortURLRepo struct {
	db *DB
}

// NewShortURLRepository builds a ShortURLRepo.
func NewShortURLRepository(db *DB) *ShortURLRepo {
	return &ShortURLRepo{db: db}
}

func (r *ShortURLRepo) Create(ctx context.Context, s *domain.ShortURL) error {
	id, err := r.db.insert(ctx, `
		INSERT INTO shorturls (hash, longurl_id, shorturl, path_size, compression_ratio, is_active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.Hash, s.LongURLID, s.ShortURL, s.PathSize, s.CompressionRatio, s.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateKey
		}
		return err
	}
	s.ID = id
	return nil
}

func (r *ShortURLRepo) FindByHash(ctx context.Context, hash int64) (*domain.ShortURL, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		r.db.rebind(`SELECT `+shortURLColumns+` FROM shorturls WHERE hash = ?`), hash)
	return scanShortURL(row)
}

func (r *ShortURLRepo) FindActiveByLongURLID(ctx context.Context, longURLID int64) (*domain.ShortURL, error) {
	row := r.db.q(ctx).QueryRowContext(ctx, r.db.rebind(`
		SELECT `+shortURLColumns+` FROM shorturls
		WHERE longurl_id = ? AND is_active = ?
		ORDER BY id DESC LIMIT 1`), longURLID, true)
	return scanShortURL(row)
}

func (r *ShortURLRepo) FindLatestActive(ctx context.Context) (*domain.ShortURL, error) {
	row := r.db.q(ctx).QueryRowContext(ctx, r.db.rebind(`
		SELECT `+shortURLColumns+` FROM shorturls
		WHERE is_active = ?
		ORDER BY id DESC LIMIT 1`), true)
	return scanShortURL(row)
}

func (r *ShortURLRepo) ExistsByHash(ctx context.Context, hash int64) (bool, error) {
	var one int
	err := r.db.q(ctx).QueryRowContext(ctx,
		r.db.rebind(`SELECT 1 FROM shorturls WHERE hash = ? LIMIT 1`), hash).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanShortURL(row *sql.Row) (*domain.ShortURL, error) {
	var s domain.ShortURL
	err := row.Scan(&s.ID, &s.Hash, &s.LongURLID, &s.ShortURL, &s.PathSize,
		&s.CompressionRatio, &s.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
