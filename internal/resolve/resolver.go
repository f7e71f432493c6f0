// Package resolve implements the redirect pipeline: map a requested short
// URL back to its target, record the hit and produce the redirect.
package resolve

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"go-shortlink/internal/analytics"
	"go-shortlink/internal/bots"
	"go-shortlink/internal/config"
	"go-shortlink/internal/domain"
	"go-shortlink/internal/urlkit"
)

// Resolution is the outcome of a lookup plus the redirect target on success.
type Resolution struct {
	Outcome  *domain.Outcome
	Location string
}

// Resolver wires the redirect flow.
type Resolver struct {
	cfg      *config.Config
	log      *zap.Logger
	events   *analytics.Logger
	detector *bots.Detector
	longs    domain.LongURLRepository
	shorts   domain.ShortURLRepository
}

// NewResolver builds a Resolver.
func NewResolver(
	cfg *config.Config,
	log *zap.Logger,
	events *analytics.Logger,
	detector *bots.Detector,
	longs domain.LongURLRepository,
	shorts domain.ShortURLRepository,
) *Resolver {
	return &Resolver{
		cfg:      cfg,
		log:      log,
		events:   events,
		detector: detector,
		longs:    longs,
		shorts:   shorts,
	}
}

// Resolve maps one requested path to its redirect. scheme is the scheme the
// request arrived on; path starts with "/".
func (r *Resolver) Resolve(ctx context.Context, req *domain.RequestInfo, scheme, path string) *Resolution {
	if req == nil || req.IP == nil {
		return r.fail(ctx, req, domain.EventError, 400, analytics.KeyIPLookupInvalid, nil)
	}
	if name, hit := r.detector.Detect(req.UserAgent); hit {
		return r.fail(ctx, req, domain.EventBlacklisted, -403, analytics.KeyRobot, name)
	}

	if path == "" || path == "/" {
		out := r.events.Log(ctx, analytics.Entry{
			Request: req,
			Type:    domain.EventRedirect,
			Status:  302,
			Key:     analytics.KeyRedirect,
			Arg:     r.cfg.IndexURL,
		})
		if out.Denied() {
			return &Resolution{Outcome: out}
		}
		return &Resolution{Outcome: out, Location: r.cfg.IndexURL}
	}

	if path == "/last" {
		return r.resolveLatest(ctx, req)
	}

	// short URLs leave here in canonical encoded form; anything else is a
	// mangled or adversarial spelling
	if canonical := urlkit.Encode(urlkit.Decode(path)); canonical != path {
		return r.fail(ctx, req, domain.EventWarning, 400, analytics.KeyShortEncodingMismatch, path)
	}

	shortURL := urlkit.StripTrailingSlash(scheme + "://" + r.servingHost(scheme) + path)
	short, err := r.shorts.FindByHash(ctx, urlkit.ShortURLHash(shortURL))
	if errors.Is(err, domain.ErrNotFound) {
		return r.fail(ctx, req, domain.EventUnresolvable, 404, analytics.KeyShortURLNotFound, path)
	}
	if err != nil {
		return r.internal(ctx, req, err)
	}
	if urlkit.StripTrailingSlash(short.ShortURL) != shortURL {
		r.log.Error("short url hash collision",
			zap.String("stored", short.ShortURL),
			zap.String("requested", shortURL))
		return r.fail(ctx, req, domain.EventError, 400, analytics.KeyShortURLMismatch, path)
	}
	if !short.IsActive {
		return r.failWithIDs(ctx, req, domain.EventInactive, 404, analytics.KeyNotFound, path, short.LongURLID, short.ID)
	}
	return r.redirect(ctx, req, short)
}

// resolveLatest serves the most recently created short URL.
func (r *Resolver) resolveLatest(ctx context.Context, req *domain.RequestInfo) *Resolution {
	short, err := r.shorts.FindLatestActive(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return r.fail(ctx, req, domain.EventUnresolvable, 404, analytics.KeyNotFound, "/last")
	}
	if err != nil {
		return r.internal(ctx, req, err)
	}
	return r.redirect(ctx, req, short)
}

func (r *Resolver) redirect(ctx context.Context, req *domain.RequestInfo, short *domain.ShortURL) *Resolution {
	long, err := r.longs.FindByID(ctx, short.LongURLID)
	if errors.Is(err, domain.ErrNotFound) {
		return r.failWithIDs(ctx, req, domain.EventUnresolvable, 404, analytics.KeyNotFound, short.ShortURL, short.LongURLID, short.ID)
	}
	if err != nil {
		return r.internal(ctx, req, err)
	}
	if !long.IsActive {
		return r.failWithIDs(ctx, req, domain.EventInactive, 404, analytics.KeyNotFound, short.ShortURL, long.ID, short.ID)
	}

	// the stored form is always encoded; hand back the original spelling
	target := urlkit.Decode(long.LongURL)

	out := r.events.Log(ctx, analytics.Entry{
		Request:    req,
		Type:       domain.EventRedirect,
		Status:     301,
		Key:        analytics.KeyRedirect,
		Arg:        target,
		LongURLID:  long.ID,
		ShortURLID: short.ID,
	})
	if out.Denied() {
		return &Resolution{Outcome: out}
	}
	return &Resolution{Outcome: out, Location: target}
}

// servingHost returns the canonical host for scheme, so lookups hash the
// stored spelling even when the request arrived through an alias.
func (r *Resolver) servingHost(scheme string) string {
	if scheme == "https" {
		return r.cfg.SecureShortHost
	}
	return r.cfg.ShortHost
}

func (r *Resolver) fail(ctx context.Context, req *domain.RequestInfo, t domain.EventType, status int, key string, arg any) *Resolution {
	return r.failWithIDs(ctx, req, t, status, key, arg, 0, 0)
}

func (r *Resolver) failWithIDs(ctx context.Context, req *domain.RequestInfo, t domain.EventType, status int, key string, arg any, longID, shortID int64) *Resolution {
	out := r.events.Log(ctx, analytics.Entry{
		Request:    req,
		Type:       t,
		Status:     status,
		Key:        key,
		Arg:        arg,
		LongURLID:  longID,
		ShortURLID: shortID,
	})
	return &Resolution{Outcome: out}
}

func (r *Resolver) internal(ctx context.Context, req *domain.RequestInfo, err error) *Resolution {
	r.log.Error("resolve pipeline failed", zap.Error(err))
	return r.fail(ctx, req, domain.EventException, 500, analytics.KeyInternalError, nil)
}
