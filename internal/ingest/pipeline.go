// Package ingest implements the shortening pipeline: screen the request,
// canonicalize the submitted URL, persist the long/short pair and record the
// submission event.
package ingest

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"go-shortlink/internal/analytics"
	"go-shortlink/internal/bots"
	"go-shortlink/internal/config"
	"go-shortlink/internal/domain"
	"go-shortlink/internal/meta"
	"go-shortlink/internal/shortpath"
	"go-shortlink/internal/urlkit"
)

// Input is one shortening submission.
type Input struct {
	LongURL     string
	Vanity      string
	Byline      string
	Description string
}

// Result is what the delivery layer renders for a submission.
type Result struct {
	Outcome     *domain.Outcome
	ShortURL    string
	Title       string
	Description string
	ImageURL    string
	Byline      string
}

// Pipeline wires the shortening flow.
type Pipeline struct {
	cfg      *config.Config
	log      *zap.Logger
	events   *analytics.Logger
	detector *bots.Detector
	screener *urlkit.Screener
	fetcher  meta.Fetcher
	gen      *shortpath.Generator
	uow      domain.UnitOfWork
	longs    domain.LongURLRepository
	shorts   domain.ShortURLRepository
}

// NewPipeline builds a Pipeline.
func NewPipeline(
	cfg *config.Config,
	log *zap.Logger,
	events *analytics.Logger,
	detector *bots.Detector,
	screener *urlkit.Screener,
	fetcher meta.Fetcher,
	gen *shortpath.Generator,
	uow domain.UnitOfWork,
	longs domain.LongURLRepository,
	shorts domain.ShortURLRepository,
) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		log:      log,
		events:   events,
		detector: detector,
		screener: screener,
		fetcher:  fetcher,
		gen:      gen,
		uow:      uow,
		longs:    longs,
		shorts:   shorts,
	}
}

// Shorten validates and persists one submission. The returned Result always
// carries an Outcome; ShortURL and the metadata fields are set on success.
func (p *Pipeline) Shorten(ctx context.Context, req *domain.RequestInfo, in Input) *Result {
	if req == nil || req.IP == nil {
		return p.reject(ctx, req, domain.EventError, 400, analytics.KeyIPLookupInvalid, nil)
	}
	if name, hit := p.detector.Detect(req.UserAgent); hit {
		return p.reject(ctx, req, domain.EventBlacklisted, -403, analytics.KeyRobot, name)
	}
	if in.LongURL == "" {
		return p.reject(ctx, req, domain.EventWarning, 400, analytics.KeyLongURLMissing, nil)
	}
	if !urlkit.IsValid(in.LongURL, p.cfg.DevMode()) {
		return p.reject(ctx, req, domain.EventWarning, 400, analytics.KeyLongURLInvalid, in.LongURL)
	}

	// a URL whose decoded form already hashes into the short-URL space is one
	// of ours; shortening a short URL is refused
	already, err := p.shorts.ExistsByHash(ctx, urlkit.ShortURLHash(urlkit.StripTrailingSlash(in.LongURL)))
	if err != nil {
		return p.internal(ctx, req, err)
	}
	if already {
		return p.reject(ctx, req, domain.EventWarning, 400, analytics.KeyDisallowDoubleShortening, in.LongURL)
	}

	if p.cfg.ScreenLongURLs && p.screener.IsProfane(in.LongURL) {
		return p.reject(ctx, req, domain.EventWarning, -403, analytics.KeyLongURLBad, in.LongURL)
	}

	normalized, preencoded := urlkit.Normalize(in.LongURL)
	hash := urlkit.LongURLHash(normalized)

	long, err := p.longs.FindByHash(ctx, hash)
	switch {
	case err == nil:
		if long.LongURL != normalized {
			p.log.Error("long url hash collision",
				zap.Int64("hash", hash),
				zap.String("stored", long.LongURL),
				zap.String("submitted", normalized))
			return p.reject(ctx, req, domain.EventError, 400, analytics.KeyHashCollision, in.LongURL)
		}
	case errors.Is(err, domain.ErrNotFound):
		long = nil
	default:
		return p.internal(ctx, req, err)
	}

	resubmitted := long != nil
	if long == nil {
		// network fetch stays outside the transaction
		pm := p.fetcher.Fetch(ctx, urlkit.Decode(normalized))
		long = &domain.LongURL{
			Hash:              hash,
			LongURL:           normalized,
			OriginallyEncoded: preencoded,
			Title:             pm.Title,
			Description:       pm.Description,
			ImageURL:          pm.ImageURL,
			SiteName:          pm.SiteName,
			MetaStatus:        pm.StatusCode,
			IsActive:          true,
		}
		if in.Description != "" {
			long.Description = in.Description
		}
		long.Byline = in.Byline
	}

	var short *domain.ShortURL
	err = p.uow.Do(ctx, func(ctx context.Context) error {
		if !resubmitted {
			if cerr := p.longs.Create(ctx, long); cerr != nil {
				if !errors.Is(cerr, domain.ErrDuplicateKey) {
					return cerr
				}
				// a concurrent submission won; adopt its row
				existing, ferr := p.longs.FindByHash(ctx, hash)
				if ferr != nil {
					return ferr
				}
				long = existing
				resubmitted = true
			}
		}

		if resubmitted {
			existing, serr := p.shorts.FindActiveByLongURLID(ctx, long.ID)
			if serr == nil {
				short = existing
				return nil
			}
			if !errors.Is(serr, domain.ErrNotFound) {
				return serr
			}
			// an existing long URL owns exactly one short URL; if it is gone
			// or switched off the submission cannot be served
			return analytics.NewOutcome(domain.EventUnresolvable, 404, analytics.KeyNotFound, in.LongURL)
		}

		cand, gerr := p.gen.Generate(ctx, urlkit.Decode(long.LongURL), in.Vanity)
		if gerr != nil {
			return gerr
		}
		short = &domain.ShortURL{
			Hash:             cand.Hash,
			LongURLID:        long.ID,
			ShortURL:         cand.ShortURL,
			PathSize:         len(cand.Path),
			CompressionRatio: ratio(long.LongURL, cand.ShortURL),
			IsActive:         true,
		}
		return p.shorts.Create(ctx, short)
	})
	if err != nil {
		var out *domain.Outcome
		if errors.As(err, &out) {
			return p.rejectOutcome(ctx, req, out)
		}
		return p.internal(ctx, req, err)
	}

	eventType, key := domain.EventLong, analytics.KeyLongURLSubmitted
	if resubmitted {
		eventType, key = domain.EventResubmitted, analytics.KeyLongURLResubmitted
	}
	outcome := p.events.Log(ctx, analytics.Entry{
		Request:    req,
		Type:       eventType,
		Status:     200,
		Key:        key,
		Arg:        short.ShortURL,
		LongURLID:  long.ID,
		ShortURLID: short.ID,
	})
	if outcome.Denied() {
		return &Result{Outcome: outcome}
	}
	return &Result{
		Outcome:     outcome,
		ShortURL:    short.ShortURL,
		Title:       long.Title,
		Description: long.Description,
		ImageURL:    long.ImageURL,
		Byline:      long.Byline,
	}
}

func (p *Pipeline) reject(ctx context.Context, req *domain.RequestInfo, t domain.EventType, status int, key string, arg any) *Result {
	out := p.events.Log(ctx, analytics.Entry{Request: req, Type: t, Status: status, Key: key, Arg: arg})
	return &Result{Outcome: out}
}

func (p *Pipeline) rejectOutcome(ctx context.Context, req *domain.RequestInfo, out *domain.Outcome) *Result {
	logged := p.events.Log(ctx, analytics.Entry{
		Request: req,
		Type:    out.Type,
		Status:  out.Status,
		Key:     out.Key,
		Message: out.Message,
	})
	return &Result{Outcome: logged}
}

func (p *Pipeline) internal(ctx context.Context, req *domain.RequestInfo, err error) *Result {
	p.log.Error("shorten pipeline failed", zap.Error(err))
	return p.reject(ctx, req, domain.EventException, 500, analytics.KeyInternalError, nil)
}

// ratio is the alias length relative to its target; smaller means more
// compression.
func ratio(longURL, shortURL string) float64 {
	if len(longURL) == 0 {
		return 0
	}
	return float64(len(shortURL)) / float64(len(longURL))
}
