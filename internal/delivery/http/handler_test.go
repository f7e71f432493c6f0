package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-shortlink/internal/analytics"
	"go-shortlink/internal/bots"
	"go-shortlink/internal/config"
	"go-shortlink/internal/domain"
	"go-shortlink/internal/geo"
	"go-shortlink/internal/ingest"
	"go-shortlink/internal/meta"
	"go-shortlink/internal/resolve"
	"go-shortlink/internal/shortpath"
	"go-shortlink/internal/urlkit"
)

type passthroughUOW struct{}

func (passthroughUOW) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memLongs struct {
	nextID int64
	byHash map[int64]*domain.LongURL
}

func (m *memLongs) Create(_ context.Context, u *domain.LongURL) error {
	if _, ok := m.byHash[u.Hash]; ok {
		return domain.ErrDuplicateKey
	}
	m.nextID++
	u.ID = m.nextID
	m.byHash[u.Hash] = u
	return nil
}

func (m *memLongs) FindByHash(_ context.Context, hash int64) (*domain.LongURL, error) {
	if u, ok := m.byHash[hash]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memLongs) FindByID(_ context.Context, id int64) (*domain.LongURL, error) {
	for _, u := range m.byHash {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memShorts struct {
	nextID int64
	byHash map[int64]*domain.ShortURL
}

func (m *memShorts) Create(_ context.Context, s *domain.ShortURL) error {
	if _, ok := m.byHash[s.Hash]; ok {
		return domain.ErrDuplicateKey
	}
	m.nextID++
	s.ID = m.nextID
	m.byHash[s.Hash] = s
	return nil
}

func (m *memShorts) FindByHash(_ context.Context, hash int64) (*domain.ShortURL, error) {
	if s, ok := m.byHash[hash]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memShorts) FindActiveByLongURLID(_ context.Context, longURLID int64) (*domain.ShortURL, error) {
	for _, s := range m.byHash {
		if s.LongURLID == longURLID && s.IsActive {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memShorts) FindLatestActive(_ context.Context) (*domain.ShortURL, error) {
	var latest *domain.ShortURL
	for _, s := range m.byHash {
		if s.IsActive && (latest == nil || s.ID > latest.ID) {
			latest = s
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

func (m *memShorts) ExistsByHash(_ context.Context, hash int64) (bool, error) {
	_, ok := m.byHash[hash]
	return ok, nil
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		ShortHost:         "go.shr",
		SecureShortHost:   "ssl.go.shr",
		SiteMode:          "prod",
		ShortPathSize:     6,
		ShortPathAlphabet: "23456789abcdefghijkmnopqrstuvwxyz",
		ReservedPaths:     []string{"home", "last", "shorten"},
		VanityMinLength:   3,
		MaxPathAttempts:   10,
		IndexURL:          "/home",
		BotListTTL:        time.Minute,
	}
	log := zap.NewNop()
	longs := &memLongs{byHash: map[int64]*domain.LongURL{}}
	shorts := &memShorts{byHash: map[int64]*domain.ShortURL{}}
	screener := urlkit.NewScreener(urlkit.ScreenerConfig{FastCheck: true}, nil)
	gen := shortpath.NewGenerator(cfg, shorts, screener, log)
	detector := bots.NewDetector(bots.StaticList{"examplebot"}, cfg.BotListTTL)
	events := analytics.NewLogger(cfg, log, nil, nil, nil)
	pipeline := ingest.NewPipeline(cfg, log, events, detector, screener, meta.NoopFetcher{}, gen, passthroughUOW{}, longs, shorts)
	resolver := resolve.NewResolver(cfg, log, events, detector, longs, shorts)
	h := NewHandler(cfg, log, geo.NewResolver(nil, log), pipeline, resolver, okPinger{})
	return NewRouter(h, log, 0)
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Gecko/20100101 Firefox/115.0")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestShortenEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/shorten", `{"lu":"http://example.com/some/page"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ShortenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.ShortURL, "http://go.shr/"))
	assert.NotEmpty(t, resp.Message)
	assert.NotEmpty(t, resp.Title)
}

func TestShortenMalformedBody(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/shorten", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestShortenMissingURL(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/shorten", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No long URL was provided.")
}

func TestShortenThenRedirect(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/shorten", `{"lu":"http://example.com/target"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ShortenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	path := strings.TrimPrefix(resp.ShortURL, "http://go.shr")

	get := doJSON(t, router, http.MethodGet, path, "")
	assert.Equal(t, http.StatusMovedPermanently, get.Code)
	assert.Equal(t, "http://example.com/target", get.Header().Get("Location"))
}

func TestRedirectUnknownPath(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/nosuch", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
}

func TestIndexRedirect(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/home", rec.Header().Get("Location"))
}

func TestVanityRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/shorten", `{"lu":"http://example.com/page","vp":"my-page"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp ShortenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "http://go.shr/my-page", resp.ShortURL)

	get := doJSON(t, router, http.MethodGet, "/my-page", "")
	assert.Equal(t, http.StatusMovedPermanently, get.Code)
}

func TestRobotsAndAdsTxt(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/robots.txt", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Disallow: /")

	rec = doJSON(t, router, http.MethodGet, "/ads.txt", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ready")
}

func TestBotRequestForbidden(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/abc234", nil)
	req.Header.Set("User-Agent", "ExampleBot/2.1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	// denial bodies carry no detail about the match
	assert.NotContains(t, rec.Body.String(), "examplebot")
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.1.1.1:999"

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
