package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	_ "go.uber.org/automaxprocs"

	"go-shortlink/internal/analytics"
	"go-shortlink/internal/bots"
	"go-shortlink/internal/config"
	"go-shortlink/internal/data"
	httpdelivery "go-shortlink/internal/delivery/http"
	"go-shortlink/internal/dimension"
	"go-shortlink/internal/geo"
	"go-shortlink/internal/ingest"
	"go-shortlink/internal/meta"
	"go-shortlink/internal/resolve"
	"go-shortlink/internal/shortpath"
	"go-shortlink/internal/urlkit"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	if cfg.DevMode() {
		if dev, derr := zap.NewDevelopment(); derr == nil {
			logger = dev
		}
	}
	analytics.SetLastResortMessage(cfg.LastResortMessage)

	db, err := data.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database initialized", zap.String("driver", cfg.DBDriver))

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, short url cache disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var locator geo.Locator
	if cfg.GeoIPPath != "" {
		gl, gerr := geo.NewGeoIP2Locator(cfg.GeoIPPath)
		if gerr != nil {
			logger.Warn("geoip database unavailable, geolocation disabled", zap.Error(gerr))
		} else {
			defer gl.Close()
			locator = gl
		}
	}

	longs := data.NewLongURLRepository(db)
	shorts := data.NewCachedShortURLs(data.NewShortURLRepository(db), rdb, logger)
	dims := dimension.NewStore(data.NewDimensionRepository(db), logger)
	blacklist := analytics.NewBlacklist(data.NewBlacklistRepository(db), cfg.BotListTTL, logger)
	events := analytics.NewLogger(cfg, logger, dims, blacklist, data.NewFactEventRepository(db))

	screener := urlkit.NewScreener(urlkit.ScreenerConfig{
		FastCheck: cfg.FastProfanityCheck,
		DeepCheck: cfg.DeepProfanityCheck,
	}, nil)
	detector := bots.NewDetector(bots.StaticList(cfg.BotList), cfg.BotListTTL)
	fetcher := meta.NewHTTPFetcher(cfg.MetaFetchTimeout, "shortlink-metabot/1.0", logger)
	generator := shortpath.NewGenerator(cfg, shorts, screener, logger)

	pipeline := ingest.NewPipeline(cfg, logger, events, detector, screener, fetcher,
		generator, data.NewUnitOfWork(db), longs, shorts)
	resolver := resolve.NewResolver(cfg, logger, events, detector, longs, shorts)

	handler := httpdelivery.NewHandler(cfg, logger, geo.NewResolver(locator, logger),
		pipeline, resolver, db)
	router := httpdelivery.NewRouter(handler, logger, cfg.RateLimit)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("short_host", cfg.ShortHost),
			zap.String("site_mode", cfg.SiteMode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
