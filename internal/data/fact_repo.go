package data

import (
	"context"
	"strings"
	"sync"

	"go-shortlink/internal/domain"
	"go-shortlink/internal/hashing"
)

// FactEventRepo appends analytics rows. A zero long-URL id is replaced with
// the seeded 'unspecified' row so reporting joins never dangle.
type FactEventRepo struct {
	db *DB

	once        sync.Once
	unspecified int64
}

// NewFactEventRepository builds a FactEventRepo.
func NewFactEventRepository(db *DB) *FactEventRepo {
	return &FactEventRepo{db: db}
}

func (r *FactEventRepo) Create(ctx context.Context, f *domain.FactEvent) error {
	cols := []string{"event_yyyymmdd", "event_hhmiss", "event_type", "cid",
		"http_status", "message", "longurl_id", "shorturl_id"}
	longID := f.LongURLID
	if longID == 0 {
		longID = r.fallbackLongID(ctx)
	}
	args := []any{f.EventDate, f.EventTime, string(f.EventType), f.CID,
		f.HTTPStatus, f.Message, longID, f.ShortURLID}

	for _, kind := range domain.DimensionKinds {
		cols = append(cols, string(kind)+"_id")
		args = append(args, f.DimensionIDs[kind])
	}

	query := `INSERT INTO factevents (` + strings.Join(cols, ", ") + `)
		VALUES (` + placeholders(len(cols)) + `)`
	id, err := r.db.insert(ctx, query, args...)
	if err != nil {
		return err
	}
	f.ID = id
	return nil
}

// fallbackLongID resolves the seeded 'unspecified' row once.
func (r *FactEventRepo) fallbackLongID(ctx context.Context) int64 {
	r.once.Do(func() {
		row := r.db.q(ctx).QueryRowContext(ctx,
			r.db.rebind(`SELECT id FROM longurls WHERE hash = ?`),
			hashing.Sum("unspecified"))
		if err := row.Scan(&r.unspecified); err != nil {
			r.unspecified = 0
		}
	})
	return r.unspecified
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
