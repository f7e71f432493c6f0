// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config is the full configuration surface of the service.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// Storage. Driver is sqlite3 or postgres.
	DBDriver  string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DBDSN     string `env:"DB_DSN" envDefault:"file:shortlink.db?_fk=1"`
	RedisAddr string `env:"REDIS_ADDR"` // empty disables the cache

	// GeoIP2 database path; empty disables geolocation.
	GeoIPPath string `env:"GEOIP_DB_PATH"`

	// Serving hosts. Secure-scheme short URLs are issued on SecureShortHost.
	ShortHost       string `env:"SHORT_HOST" envDefault:"localhost:8080"`
	SecureShortHost string `env:"SECURE_SHORT_HOST" envDefault:"localhost:8080"`

	// SiteMode is "dev" or "prod". Dev mode admits localhost URLs and
	// downgrades short-URL schemes to http.
	SiteMode   string `env:"SITE_MODE" envDefault:"prod"`
	RequireTLS bool   `env:"REQUIRE_TLS"`

	ShortPathSize     int      `env:"SHORT_PATH_SIZE" envDefault:"6"`
	ShortPathAlphabet string   `env:"SHORT_PATH_ALPHABET" envDefault:"23456789abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"`
	ReservedPaths     []string `env:"RESERVED_PATHS" envSeparator:"," envDefault:"home,last,shorten,admin,api,robots.txt,ads.txt"`
	VanityMinLength   int      `env:"VANITY_MIN_LENGTH" envDefault:"3"`
	MaxPathAttempts   int      `env:"MAX_PATH_ATTEMPTS" envDefault:"10"`

	FastProfanityCheck    bool `env:"ENABLE_FAST_PROFANITY_CHECK" envDefault:"true"`
	DeepProfanityCheck    bool `env:"ENABLE_DEEP_PROFANITY_CHECK"`
	ScreenLongURLs        bool `env:"ENABLE_LONG_URL_PROFANITY_CHECK"`

	BotList    []string      `env:"BOT_LIST" envSeparator:"," envDefault:"bot,crawler,spider,slurp,facebookexternalhit,curl,wget,python-requests"`
	BotListTTL time.Duration `env:"BOT_LIST_TTL" envDefault:"10m"`

	IndexURL string `env:"INDEX_URL" envDefault:"/home"`

	AnalyticsEnabled bool `env:"ENABLE_ANALYTICS" envDefault:"true"`
	LoggingEnabled   bool `env:"ENABLE_LOGGING" envDefault:"true"`
	VerboseLogging   bool `env:"VERBOSE_LOGGING"`
	Log200           bool `env:"LOG_HTTP200" envDefault:"true"`
	Log301           bool `env:"LOG_HTTP301" envDefault:"true"`
	Log302           bool `env:"LOG_HTTP302" envDefault:"true"`
	Log400           bool `env:"LOG_HTTP400" envDefault:"true"`
	Log403           bool `env:"LOG_HTTP403" envDefault:"true"`
	Log404           bool `env:"LOG_HTTP404" envDefault:"true"`

	LastResortMessage string `env:"MESSAGE_OF_LAST_RESORT" envDefault:"SEVERE ERROR: EXPECTED MESSAGE NOT FOUND!"`

	MetaFetchTimeout time.Duration `env:"META_FETCH_TIMEOUT" envDefault:"10s"`
	RateLimit        int           `env:"RATE_LIMIT" envDefault:"100"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.ShortPathSize < 1 {
		return nil, fmt.Errorf("SHORT_PATH_SIZE must be positive, got %d", cfg.ShortPathSize)
	}
	if len(cfg.ShortPathAlphabet) < 2 {
		return nil, fmt.Errorf("SHORT_PATH_ALPHABET too small")
	}
	return cfg, nil
}

// DevMode reports whether the service runs with dev-mode allowances.
func (c *Config) DevMode() bool {
	return c.SiteMode == "dev"
}
