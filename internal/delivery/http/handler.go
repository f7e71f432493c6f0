// Package http exposes the shortening and redirect pipelines over chi.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"go-shortlink/internal/config"
	"go-shortlink/internal/domain"
	"go-shortlink/internal/geo"
	"go-shortlink/internal/ingest"
	"go-shortlink/internal/resolve"
	"go-shortlink/pkg/problemdetails"
)

// Pinger is the health-check surface of the database handle.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler carries the HTTP endpoints.
type Handler struct {
	cfg      *config.Config
	log      *zap.Logger
	client   *geo.Resolver
	pipeline *ingest.Pipeline
	resolver *resolve.Resolver
	db       Pinger
}

// NewHandler builds a Handler.
func NewHandler(
	cfg *config.Config,
	log *zap.Logger,
	client *geo.Resolver,
	pipeline *ingest.Pipeline,
	resolver *resolve.Resolver,
	db Pinger,
) *Handler {
	return &Handler{
		cfg:      cfg,
		log:      log,
		client:   client,
		pipeline: pipeline,
		resolver: resolver,
		db:       db,
	}
}

// ShortenRequest is the POST /shorten body. Field names follow the submission
// form: lu is the long URL, vp an optional vanity path, bl a byline and de a
// description override.
type ShortenRequest struct {
	LongURL     string `json:"lu"`
	VanityPath  string `json:"vp,omitempty"`
	Byline      string `json:"bl,omitempty"`
	Description string `json:"de,omitempty"`
}

// ShortenResponse is the POST /shorten success body.
type ShortenResponse struct {
	ShortURL    string `json:"shorturl"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Byline      string `json:"byline,omitempty"`
	Message     string `json:"message"`
}

// Shorten handles POST /shorten.
func (h *Handler) Shorten(w http.ResponseWriter, r *http.Request) {
	var req ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, problemdetails.New(http.StatusBadRequest,
			problemdetails.TypeInvalidRequest, "Invalid Request",
			"Request body must be valid JSON with an 'lu' field"))
		return
	}

	res := h.pipeline.Shorten(r.Context(), h.describe(r), ingest.Input{
		LongURL:     req.LongURL,
		Vanity:      req.VanityPath,
		Byline:      req.Byline,
		Description: req.Description,
	})
	if !res.Outcome.OK() {
		writeOutcome(w, res.Outcome)
		return
	}
	writeJSON(w, http.StatusOK, ShortenResponse{
		ShortURL:    res.ShortURL,
		Title:       res.Title,
		Description: res.Description,
		ImageURL:    res.ImageURL,
		Byline:      res.Byline,
		Message:     res.Outcome.Message,
	})
}

// Redirect handles every GET that is not an API or static route.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	res := h.resolver.Resolve(r.Context(), h.describe(r), requestScheme(r), r.URL.Path)
	if !res.Outcome.OK() {
		writeOutcome(w, res.Outcome)
		return
	}
	http.Redirect(w, r, res.Location, res.Outcome.HTTPStatus())
}

// RobotsTxt keeps crawlers away from the redirect space.
func (h *Handler) RobotsTxt(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n"))
}

// AdsTxt serves an empty seller declaration.
func (h *Handler) AdsTxt(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("# no authorized sellers\n"))
}

type healthResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Healthz handles the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Readyz handles the readiness probe.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status: "unavailable",
			Reason: "database unavailable: " + err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ready"})
}

// describe resolves the client context; the pipelines turn a nil result into
// their invalid-client outcome.
func (h *Handler) describe(r *http.Request) *domain.RequestInfo {
	info, err := h.client.Describe(r)
	if err != nil {
		h.log.Warn("client address resolution failed", zap.Error(err))
		return nil
	}
	return info
}

func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
