package data

import (
	"context"
	"strings"

	"go-shortlink/internal/domain"
)

// BlacklistRepo reads veto rules.
type BlacklistRepo struct {
	db *DB
}

// NewBlacklistRepository builds a BlacklistRepo.
func NewBlacklistRepository(db *DB) *BlacklistRepo {
	return &BlacklistRepo{db: db}
}

func (r *BlacklistRepo) FindActive(ctx context.Context) ([]*domain.BlacklistEntry, error) {
	cols := []string{"id", "is_active"}
	for _, kind := range domain.DimensionKinds {
		cols = append(cols, string(kind)+"_id")
	}
	rows, err := r.db.q(ctx).QueryContext(ctx, r.db.rebind(`
		SELECT `+strings.Join(cols, ", ")+` FROM blacklist WHERE is_active = ?`), true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.BlacklistEntry
	for rows.Next() {
		entry := &domain.BlacklistEntry{DimIDs: make(map[domain.DimensionKind]int64, len(domain.DimensionKinds))}
		dims := make([]int64, len(domain.DimensionKinds))
		dest := []any{&entry.ID, &entry.IsActive}
		for i := range dims {
			dest = append(dest, &dims[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, kind := range domain.DimensionKinds {
			entry.DimIDs[kind] = dims[i]
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
