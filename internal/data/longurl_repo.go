package data

import (
	"context"
	"database/sql"
	"errors"

	"go-shortlink/internal/domain"
)

const longURLColumns = `id, hash, longurl, originally_encoded, title, description,
	image_url, byline, site_name, meta_status, is_active`

// LongURLRepo persists long URLs.
type LongURLRepo struct {
	db *DB
}

// NewLongURLRepository builds a LongURLRepo.
func NewLongURLRepository(db *DB) *LongURLRepo {
	return &LongURLRepo{db: db}
}

func (r *LongURLRepo) Create(ctx context.Context, u *domain.LongURL) error {
	id, err := r.db.insert(ctx, `
		INSERT INTO longurls (hash, longurl, originally_encoded, title, description,
			image_url, byline, site_name, meta_status, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Hash, u.LongURL, u.OriginallyEncoded, u.Title, u.Description,
		u.ImageURL, u.Byline, u.SiteName, u.MetaStatus, u.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateKey
		}
		return err
	}
	u.ID = id
	return nil
}

func (r *LongURLRepo) FindByHash(ctx context.Context, hash int64) (*domain.LongURL, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		r.db.rebind(`SELECT `+longURLColumns+` FROM longurls WHERE hash = ?`), hash)
	return scanLongURL(row)
}

func (r *LongURLRepo) FindByID(ctx context.Context, id int64) (*domain.LongURL, error) {
	row := r.db.q(ctx).QueryRowContext(ctx,
		r.db.rebind(`SELECT `+longURLColumns+` FROM longurls WHERE id = ?`), id)
	return scanLongURL(row)
}

func scanLongURL(row *sql.Row) (*domain.LongURL, error) {
	var u domain.LongURL
	err := row.Scan(&u.ID, &u.Hash, &u.LongURL, &u.OriginallyEncoded, &u.Title,
		&u.Description, &u.ImageURL, &u.Byline, &u.SiteName, &u.MetaStatus, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
