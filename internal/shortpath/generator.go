// Package shortpath issues the alias path for a shortened URL, either a
// caller-chosen vanity path or a random one drawn from the configured
// alphabet.
package shortpath

import (
	"context"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"go-shortlink/internal/analytics"
	"go-shortlink/internal/config"
	"go-shortlink/internal/domain"
	"go-shortlink/internal/urlkit"
)

// secureSchemes are issued on the secure serving host.
var secureSchemes = map[string]struct{}{
	"https": {},
	"ftps":  {},
	"sftp":  {},
}

var vanityPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Candidate is a generated short URL, its path and its lookup hash.
type Candidate struct {
	ShortURL string
	Path     string
	Hash     int64
}

// Generator builds candidates and arbitrates path collisions against the
// short-URL hash space.
type Generator struct {
	shorts   domain.ShortURLRepository
	screener *urlkit.Screener
	cfg      *config.Config
	log      *zap.Logger
}

// NewGenerator builds a Generator.
func NewGenerator(cfg *config.Config, shorts domain.ShortURLRepository, screener *urlkit.Screener, log *zap.Logger) *Generator {
	return &Generator{shorts: shorts, screener: screener, cfg: cfg, log: log}
}

// Generate returns an unclaimed candidate for longURL. A non-empty vanity
// path is used as-is and fails hard when invalid or taken; otherwise random
// paths are drawn until one is free or the attempt budget runs out.
func (g *Generator) Generate(ctx context.Context, longURL, vanity string) (*Candidate, error) {
	scheme, host := g.target(urlkit.Scheme(longURL))

	if vanity != "" {
		if !g.vanityAcceptable(vanity) {
			return nil, analytics.NewOutcome(domain.EventWarning, 400, analytics.KeyVanityPathInvalid, vanity)
		}
		cand := g.candidate(scheme, host, vanity)
		exists, err := g.shorts.ExistsByHash(ctx, cand.Hash)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, analytics.NewOutcome(domain.EventWarning, 400, analytics.KeyVanityPathExists, vanity)
		}
		return cand, nil
	}

	for attempt := 0; attempt < g.cfg.MaxPathAttempts; attempt++ {
		path, err := gonanoid.Generate(g.cfg.ShortPathAlphabet, g.cfg.ShortPathSize)
		if err != nil {
			return nil, err
		}
		if g.reserved(path) || g.screener.IsProfane(path) {
			continue
		}
		cand := g.candidate(scheme, host, path)
		exists, err := g.shorts.ExistsByHash(ctx, cand.Hash)
		if err != nil {
			return nil, err
		}
		if exists {
			g.log.Debug("short path taken, redrawing", zap.String("path", path))
			continue
		}
		return cand, nil
	}
	return nil, analytics.NewOutcome(domain.EventError, 500, analytics.KeyPathSpaceExhausted, longURL)
}

// target picks the serving scheme and host for a short URL. Targets with a
// secure scheme are issued as https on the secure host; everything else as
// http on the plain host. Dev mode downgrades to http, RequireTLS upgrades
// everything to https.
func (g *Generator) target(longScheme string) (scheme, host string) {
	if _, secure := secureSchemes[longScheme]; secure {
		scheme, host = "https", g.cfg.SecureShortHost
	} else {
		scheme, host = "http", g.cfg.ShortHost
	}
	if g.cfg.DevMode() {
		scheme = "http"
	} else if g.cfg.RequireTLS {
		scheme, host = "https", g.cfg.SecureShortHost
	}
	return scheme, host
}

func (g *Generator) candidate(scheme, host, path string) *Candidate {
	su := scheme + "://" + host + "/" + path
	return &Candidate{ShortURL: su, Path: path, Hash: urlkit.ShortURLHash(su)}
}

func (g *Generator) vanityAcceptable(vanity string) bool {
	err := validation.Validate(vanity,
		validation.Required,
		validation.Length(g.cfg.VanityMinLength, 0),
		validation.Match(vanityPattern),
	)
	if err != nil {
		return false
	}
	if g.reserved(vanity) {
		return false
	}
	return !g.screener.IsProfane(vanity)
}

func (g *Generator) reserved(path string) bool {
	lc := strings.ToLower(path)
	return lo.Contains(g.cfg.ReservedPaths, lc)
}
