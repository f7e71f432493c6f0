// Package meta fetches descriptive metadata for submitted target documents.
// Failures are soft by contract: ingestion proceeds with degraded defaults.
package meta

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"go-shortlink/internal/domain"
	"go-shortlink/internal/urlkit"
)

// maxTitleLen bounds the stored title.
const maxTitleLen = 100

// Fetcher retrieves page metadata for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) domain.PageMeta
}

// HTTPFetcher scrapes Open Graph and document metadata over HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	log       *zap.Logger
}

// NewHTTPFetcher builds a fetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string, log *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       log,
	}
}

// Fetch GETs url and extracts title, description, image and site name. Any
// failure returns the degraded default: title equals the URL itself.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) domain.PageMeta {
	m := domain.PageMeta{Title: FitText(url, "", maxTitleLen)}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return m
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Debug("metadata fetch failed", zap.String("url", url), zap.Error(err))
		return m
	}
	defer resp.Body.Close()

	m.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		return m
	}

	ctype := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(ctype, ';'); i >= 0 {
		ctype = ctype[:i]
	}
	if strings.TrimSpace(ctype) != "text/html" {
		return m
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		f.log.Debug("metadata parse failed", zap.String("url", url), zap.Error(err))
		return m
	}
	extract(doc, url, &m)
	return m
}

// extract pulls og: properties with document fallbacks into m.
func extract(doc *goquery.Document, url string, m *domain.PageMeta) {
	title := ogContent(doc, "og:title")
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title = url
	}
	m.Title = FitText(title, "", maxTitleLen)

	m.Description = ogContent(doc, "og:description")
	m.SiteName = ogContent(doc, "og:site_name")

	if img := ogContent(doc, "og:image"); img != "" && urlkit.IsValid(img, false) {
		if s := urlkit.Scheme(img); strings.HasPrefix(s, "http") {
			m.ImageURL = img
		}
	}
}

func ogContent(doc *goquery.Document, property string) string {
	val, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(val)
}

// FitText truncates text to maxLen, appending an ellipsis and suffix when
// it was cut.
func FitText(text, suffix string, maxLen int) string {
	limit := maxLen - len(suffix) - 1
	if len(text) > limit {
		return text[:limit-3] + "... " + suffix
	}
	return strings.TrimRight(text+" "+suffix, " ")
}

// NoopFetcher returns degraded defaults without touching the network; used
// in tests and when outbound fetching is disabled.
type NoopFetcher struct{}

// Fetch returns the URL-as-title default.
func (NoopFetcher) Fetch(_ context.Context, url string) domain.PageMeta {
	return domain.PageMeta{Title: FitText(url, "", maxTitleLen)}
}
