package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-shortlink/internal/config"
	"go-shortlink/internal/dimension"
	"go-shortlink/internal/domain"
)

// Entry is one event to classify, log and record. Message, when set,
// overrides the canonical rendering for Key.
type Entry struct {
	Request    *domain.RequestInfo
	Type       domain.EventType
	Status     int
	Key        string
	Arg        any
	Message    string
	LongURLID  int64
	ShortURLID int64
}

// Logger is the single funnel for request events. Every entry is normalized
// into an Outcome, deduplicated, checked against the blacklist, written as a
// fact row and emitted as a structured log line, in that order. The returned
// Outcome is what the delivery layer renders.
type Logger struct {
	cfg       *config.Config
	log       *zap.Logger
	dims      *dimension.Store
	blacklist *Blacklist
	facts     domain.FactEventRepository

	mu      sync.Mutex
	lastKey string
}

// NewLogger builds a Logger. dims, blacklist and facts may be nil when
// analytics is disabled.
func NewLogger(cfg *config.Config, log *zap.Logger, dims *dimension.Store, blacklist *Blacklist, facts domain.FactEventRepository) *Logger {
	return &Logger{cfg: cfg, log: log, dims: dims, blacklist: blacklist, facts: facts}
}

// Log processes e and returns the outcome to serve. A blacklist match
// replaces the outcome with a detail-free denial. Duplicate requests from
// the same client within the same second are classified but not recorded.
func (l *Logger) Log(ctx context.Context, e Entry) *domain.Outcome {
	out := l.normalize(e)

	if l.isDuplicate(e.Request) {
		// repeat from the same client in the same second: classify only,
		// nothing is recorded or logged
		return out
	}

	var ids map[domain.DimensionKind]int64
	if l.cfg.AnalyticsEnabled && l.dims != nil && e.Request != nil {
		set, err := l.dims.ResolveAll(ctx, e.Request)
		if err != nil {
			l.log.Error("dimension resolution failed", zap.Error(err))
		} else {
			ids = set.IDs()
			if l.blacklist != nil && l.blacklist.Vetoed(ctx, ids) {
				out = NewOutcome(domain.EventBlacklisted, -403, KeyBlacklisted, nil)
			}
			l.record(ctx, e, out, ids)
		}
	}

	l.emit(e, out, ids)
	return out
}

// normalize fills in the derivable half of an entry's type/status pair. An
// informational type pins the status to 0, and a success status with no
// explicit classification reads as informational.
func (l *Logger) normalize(e Entry) *domain.Outcome {
	t, status := e.Type, e.Status
	if t == domain.EventInfo {
		status = 0
	}
	if t == "" {
		switch {
		case status == 0 || status == 200:
			t = domain.EventInfo
		case abs(status) >= 500:
			t = domain.EventError
		case abs(status) >= 400:
			t = domain.EventWarning
		default:
			t = domain.EventInfo
		}
	}
	out := NewOutcome(t, status, e.Key, e.Arg)
	if e.Message != "" {
		out.Message = e.Message
	}
	return out
}

// isDuplicate collapses same-client retries inside one wall-clock second.
func (l *Logger) isDuplicate(req *domain.RequestInfo) bool {
	if req == nil {
		return false
	}
	key := req.IPString() + "|" + req.UserAgent + "|" + time.Now().UTC().Format("20060102150405")
	l.mu.Lock()
	defer l.mu.Unlock()
	if key == l.lastKey {
		return true
	}
	l.lastKey = key
	return false
}

// record appends the immutable fact row.
func (l *Logger) record(ctx context.Context, e Entry, out *domain.Outcome, ids map[domain.DimensionKind]int64) {
	if l.facts == nil {
		return
	}
	now := time.Now().UTC()
	cid, err := uuid.NewV7()
	if err != nil {
		cid = uuid.New()
	}
	fact := &domain.FactEvent{
		EventDate:    now.Format("20060102"),
		EventTime:    now.Format("150405"),
		EventType:    out.Type,
		CID:          cid.String(),
		HTTPStatus:   out.HTTPStatus(),
		Message:      out.Message,
		LongURLID:    e.LongURLID,
		ShortURLID:   e.ShortURLID,
		DimensionIDs: ids,
	}
	if err := l.facts.Create(ctx, fact); err != nil {
		l.log.Error("fact write failed", zap.Error(err))
	}
}

// emit routes one log line by severity. The per-status switches gate whether
// a line appears at all; the verbosity gate only controls whether the
// resolved request detail rides along on it.
func (l *Logger) emit(e Entry, out *domain.Outcome, ids map[domain.DimensionKind]int64) {
	if !l.cfg.LoggingEnabled {
		return
	}
	s := abs(out.Status)
	if !l.statusEnabled(s) {
		return
	}
	fields := []zap.Field{
		zap.String("event_type", string(out.Type)),
		zap.Int("status", s),
	}
	if l.cfg.VerboseLogging || (s >= 400 && s != 404) {
		fields = append(fields,
			zap.Int64("long_id", e.LongURLID),
			zap.Int64("short_id", e.ShortURLID),
		)
		if e.Request != nil {
			fields = append(fields, zap.String("ip", e.Request.IPString()))
		}
		for _, kind := range domain.DimensionKinds {
			if id, ok := ids[kind]; ok {
				fields = append(fields, zap.Int64(string(kind)+"_id", id))
			}
		}
	}
	switch {
	case s == 0 || s == 200 || s == 301 || s == 302 || s == 404:
		l.log.Info(out.Message, fields...)
	case s == 400 || s == 403:
		l.log.Warn(out.Message, fields...)
	default:
		l.log.Error(out.Message, fields...)
	}
}

// statusEnabled applies the per-status logging switches.
func (l *Logger) statusEnabled(status int) bool {
	switch status {
	case 200:
		return l.cfg.Log200
	case 301:
		return l.cfg.Log301
	case 302:
		return l.cfg.Log302
	case 400:
		return l.cfg.Log400
	case 403:
		return l.cfg.Log403
	case 404:
		return l.cfg.Log404
	default:
		return true
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
