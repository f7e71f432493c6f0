package data

import (
	"context"
	"database/sql"
	"errors"

	"go-shortlink/internal/domain"
)

// DimensionRepo persists the deduplicated dimension records, all kinds in
// one table discriminated by the kind column.
type DimensionRepo struct {
	db *DB
}

// NewDimensionRepository builds a DimensionRepo.
func NewDimensionRepository(db *DB) *DimensionRepo {
	return &DimensionRepo{db: db}
}

func (r *DimensionRepo) FindByHash(ctx context.Context, kind domain.DimensionKind, hash int64) (*domain.DimensionRecord, error) {
	var rec domain.DimensionRecord
	err := r.db.q(ctx).QueryRowContext(ctx, r.db.rebind(`
		SELECT id, kind, hash, value, is_mutable FROM dimensions
		WHERE kind = ? AND hash = ?`), string(kind), hash).
		Scan(&rec.ID, &rec.Kind, &rec.Hash, &rec.Value, &rec.IsMutable)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *DimensionRepo) Create(ctx context.Context, rec *domain.DimensionRecord) error {
	id, err := r.db.insert(ctx, `
		INSERT INTO dimensions (kind, hash, value, is_mutable)
		VALUES (?, ?, ?, ?)`,
		string(rec.Kind), rec.Hash, rec.Value, rec.IsMutable)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateKey
		}
		return err
	}
	rec.ID = id
	return nil
}

func (r *DimensionRepo) UpdateValue(ctx context.Context, kind domain.DimensionKind, id int64, value string) error {
	res, err := r.db.q(ctx).ExecContext(ctx, r.db.rebind(`
		UPDATE dimensions SET value = ?
		WHERE kind = ? AND id = ? AND is_mutable = ?`),
		value, string(kind), id, true)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
