package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter assembles the chi router with the standard middleware stack.
func NewRouter(h *Handler, log *zap.Logger, requestsPerMinute int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(log))
	r.Use(middleware.Recoverer)
	if requestsPerMinute > 0 {
		r.Use(NewRateLimiter(requestsPerMinute).Middleware)
	}

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Get("/robots.txt", h.RobotsTxt)
	r.Get("/ads.txt", h.AdsTxt)
	r.Post("/shorten", h.Shorten)

	// everything else is treated as a short path, the root included
	r.Get("/", h.Redirect)
	r.Get("/*", h.Redirect)

	return r
}
